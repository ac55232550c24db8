// Package producer runs the generator's fixed-rate loop: drain one pending
// command, then write a frame into the shared ring when one is due.
package producer

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/WaveStream/internal/config"
	"github.com/RenatoCabral2022/WaveStream/internal/metrics"
	"github.com/RenatoCabral2022/WaveStream/internal/oscillator"
	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
	"github.com/RenatoCabral2022/WaveStream/internal/ringbuffer"
)

// CommandSource yields at most one complete command per call without
// blocking. *protocol.Receiver satisfies it.
type CommandSource interface {
	Poll() (protocol.Command, bool)
}

// partialReporter is implemented by sources that count discarded fragments.
type partialReporter interface {
	PartialRecords() int64
}

// blockWriter is implemented by generators that can fill a caller's buffer.
type blockWriter interface {
	GenerateInto(dst []float64) []float64
}

// paramReader is implemented by generators that expose their parameters.
type paramReader interface {
	Frequency() float64
	Amplitude() float64
	Phase() float64
	DisplayCycles() float64
	CurrentZoom() float64
}

// Producer owns the generator and the write side of the ring. Tick and Run
// must be called from a single goroutine; Status is safe from any goroutine.
type Producer struct {
	cfg      *config.Config
	logger   *zap.Logger
	gen      oscillator.Generator
	ring     *ringbuffer.Ring
	commands CommandSource
	router   *protocol.Router

	frame       []float64
	lastFrame   time.Time
	quit        bool
	lastPartial int64

	frames   atomic.Int64
	applied  atomic.Int64
	dropped  atomic.Int64
	quitSeen atomic.Bool
}

// New wires a producer and registers the command handlers.
func New(cfg *config.Config, logger *zap.Logger, gen oscillator.Generator,
	ring *ringbuffer.Ring, commands CommandSource) *Producer {

	p := &Producer{
		cfg:      cfg,
		logger:   logger,
		gen:      gen,
		ring:     ring,
		commands: commands,
		router:   protocol.NewRouter(logger),
		frame:    make([]float64, cfg.SamplesPerFrame),
	}

	p.router.Register(protocol.CmdStart, func(float64) error {
		p.gen.Start()
		metrics.GeneratorRunning.Set(1)
		return nil
	})
	p.router.Register(protocol.CmdStop, func(float64) error {
		p.gen.Stop()
		metrics.GeneratorRunning.Set(0)
		return nil
	})
	p.router.Register(protocol.CmdSetFreq, func(v float64) error {
		p.gen.SetParameter(oscillator.ParamFrequency, v)
		p.publishParams()
		return nil
	})
	p.router.Register(protocol.CmdSetAmp, func(v float64) error {
		p.gen.SetParameter(oscillator.ParamAmplitude, v)
		p.publishParams()
		return nil
	})
	p.router.Register(protocol.CmdQuit, func(float64) error {
		p.quit = true
		p.quitSeen.Store(true)
		return nil
	})

	p.publishParams()
	return p
}

// Run ticks every cfg.TickInterval until ctx is cancelled or a quit command
// arrives. Per-tick problems are logged, never returned.
func (p *Producer) Run(ctx context.Context) error {
	interval := p.cfg.TickInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("producer loop started",
		zap.Int("samplesPerFrame", p.cfg.SamplesPerFrame),
		zap.Duration("frameInterval", p.cfg.FrameInterval),
	)

	for {
		if p.Tick(ctx, time.Now()) {
			break
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	reason := "cancelled"
	if p.quit {
		reason = "quit command"
	}
	p.logger.Info("producer loop stopped",
		zap.String("reason", reason),
		zap.Int64("frames", p.frames.Load()),
		zap.Uint64("samples", p.ring.TotalProduced()),
	)
	return nil
}

// Tick performs one scheduler step at time now and reports whether the loop
// should end.
func (p *Producer) Tick(ctx context.Context, now time.Time) bool {
	if ctx.Err() != nil {
		return true
	}

	if cmd, ok := p.commands.Poll(); ok {
		p.apply(cmd)
	}
	p.trackPartials()

	if p.lastFrame.IsZero() {
		p.lastFrame = now
	}
	if now.Sub(p.lastFrame) >= p.cfg.FrameInterval {
		if p.gen.IsActive() {
			p.writeFrame()
		}
		p.lastFrame = now
	}

	return p.quit
}

func (p *Producer) apply(cmd protocol.Command) {
	label := cmd.Type.String()
	if _, known := protocol.ParseCommandType(label); !known {
		label = "unknown"
	}
	metrics.CommandsTotal.WithLabelValues(label).Inc()
	p.applied.Add(1)

	p.logger.Info("command received", zap.Stringer("command", cmd))
	if err := p.router.Dispatch(cmd); err != nil {
		p.logger.Warn("command failed", zap.Stringer("command", cmd), zap.Error(err))
	}
}

func (p *Producer) writeFrame() {
	start := time.Now()

	var samples []float64
	if bw, ok := p.gen.(blockWriter); ok {
		samples = bw.GenerateInto(p.frame)
	} else {
		samples = p.gen.GenerateSamples(p.cfg.SamplesPerFrame)
	}
	if len(samples) == 0 {
		return
	}

	dropped := p.ring.WriteFrame(samples)
	p.frames.Add(1)
	p.dropped.Add(int64(dropped))

	metrics.FramesTotal.Inc()
	metrics.SamplesTotal.Add(float64(len(samples)))
	if dropped > 0 {
		metrics.OverwrittenTotal.Add(float64(dropped))
	}
	metrics.RingUnread.Set(float64(p.ring.Available()))
	metrics.FrameDuration.Observe(float64(time.Since(start).Microseconds()))
}

func (p *Producer) trackPartials() {
	pr, ok := p.commands.(partialReporter)
	if !ok {
		return
	}
	n := pr.PartialRecords()
	if n > p.lastPartial {
		metrics.PartialRecordsTotal.Add(float64(n - p.lastPartial))
		p.logger.Debug("discarded partial command record", zap.Int64("total", n))
		p.lastPartial = n
	}
}

func (p *Producer) publishParams() {
	if pr, ok := p.gen.(paramReader); ok {
		metrics.Frequency.Set(pr.Frequency())
		metrics.Amplitude.Set(pr.Amplitude())
	}
}

// Status is a point-in-time view of the producer for instrumentation.
type Status struct {
	Running       bool    `json:"running"`
	Frequency     float64 `json:"frequency"`
	Amplitude     float64 `json:"amplitude"`
	Phase         float64 `json:"phase"`
	DisplayCycles float64 `json:"displayCycles"`
	Zoom          float64 `json:"zoom"`
	WritePos      int     `json:"writePos"`
	ReadPos       int     `json:"readPos"`
	TotalProduced uint64  `json:"totalProduced"`
	Unread        int     `json:"unread"`
	Frames        int64   `json:"frames"`
	Commands      int64   `json:"commands"`
	Overwritten   int64   `json:"overwritten"`
	QuitRequested bool    `json:"quitRequested"`
}

// Status reads only atomics and is safe to call while the loop runs.
func (p *Producer) Status() Status {
	st := Status{
		Running:       p.gen.IsActive(),
		WritePos:      p.ring.WritePos(),
		ReadPos:       p.ring.ReadPos(),
		TotalProduced: p.ring.TotalProduced(),
		Unread:        p.ring.Available(),
		Frames:        p.frames.Load(),
		Commands:      p.applied.Load(),
		Overwritten:   p.dropped.Load(),
		QuitRequested: p.quitSeen.Load(),
	}
	if pr, ok := p.gen.(paramReader); ok {
		st.Frequency = pr.Frequency()
		st.Amplitude = pr.Amplitude()
		st.Phase = pr.Phase()
		st.DisplayCycles = pr.DisplayCycles()
		st.Zoom = pr.CurrentZoom()
	}
	return st
}
