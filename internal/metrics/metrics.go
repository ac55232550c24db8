package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	GeneratorRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavestream_generator_running",
		Help: "1 while the oscillator is producing frames",
	})
	Frequency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavestream_frequency_hz",
		Help: "Current oscillator frequency in Hz",
	})
	Amplitude = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavestream_amplitude",
		Help: "Current oscillator amplitude",
	})
	RingUnread = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavestream_ring_unread_samples",
		Help: "Samples written to the shared ring and not yet drained",
	})
)

// Counters
var (
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavestream_frames_total",
		Help: "Frames written to the shared ring",
	})
	SamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavestream_samples_total",
		Help: "Samples written to the shared ring",
	})
	OverwrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavestream_overwritten_samples_total",
		Help: "Unread samples discarded because the ring was full",
	})
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavestream_commands_total",
		Help: "Commands received on the control FIFO by type",
	}, []string{"type"})
	PartialRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavestream_partial_records_total",
		Help: "Short reads on the control FIFO that were discarded",
	})
)

// Histograms
var (
	FrameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wavestream_frame_duration_us",
		Help:    "Time to synthesize and write one frame in microseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 5000},
	})
)
