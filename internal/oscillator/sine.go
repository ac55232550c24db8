package oscillator

import (
	"math"
	"sync/atomic"
)

const (
	baseFrequency = 100.0
	baseCycles    = 2.0
	baseVelocity  = 0.005
	maxVelocity   = 0.03
	minCycles     = 0.5
	maxCycles     = 12.0
	minZoom       = 0.5
	maxZoom       = 2.0

	twoPi = 2 * math.Pi
)

// Sine is a phase-accumulating sine source that renders a scrolling display
// pattern rather than a fixed-sample-rate tone. Each block spans
// DisplayCycles oscillations regardless of its length, and consecutive blocks
// start where the persistent phase left off.
//
// Frequency, amplitude and the running flag may be touched from any goroutine.
// The phase is advanced only by the goroutine calling GenerateSamples.
type Sine struct {
	frequency atomicFloat
	amplitude atomicFloat
	running   atomic.Bool
	phase     atomicFloat

	displayCycles atomicFloat
	currentZoom   atomicFloat
}

var _ Generator = (*Sine)(nil)

// NewSine creates a stopped oscillator. Amplitude is clamped to [0, 1];
// frequency is taken as given until the first SetParameter call.
func NewSine(frequency, amplitude float64) *Sine {
	s := &Sine{}
	s.frequency.Store(frequency)
	s.amplitude.Store(clamp(amplitude, MinAmplitude, MaxAmplitude))
	s.displayCycles.Store(baseCycles)
	s.currentZoom.Store(1.0)
	s.updateDisplayParameters()
	return s
}

// NewDefaultSine creates a stopped 100 Hz oscillator at amplitude 0.8.
func NewDefaultSine() *Sine {
	return NewSine(DefaultFrequency, DefaultAmplitude)
}

func (s *Sine) Start() { s.running.Store(true) }
func (s *Sine) Stop()  { s.running.Store(false) }

func (s *Sine) IsActive() bool  { return s.running.Load() }
func (s *Sine) IsRunning() bool { return s.running.Load() }

func (s *Sine) Frequency() float64     { return s.frequency.Load() }
func (s *Sine) Amplitude() float64     { return s.amplitude.Load() }
func (s *Sine) Phase() float64         { return s.phase.Load() }
func (s *Sine) DisplayCycles() float64 { return s.displayCycles.Load() }
func (s *Sine) CurrentZoom() float64   { return s.currentZoom.Load() }

// ResetPhase puts the persistent phase back to zero.
func (s *Sine) ResetPhase() { s.phase.Store(0) }

// SetParameter clamps and applies frequency or amplitude. Other names and NaN
// values are ignored.
func (s *Sine) SetParameter(name string, value float64) {
	if math.IsNaN(value) {
		return
	}
	switch name {
	case ParamFrequency:
		s.frequency.Store(clamp(value, MinFrequency, MaxFrequency))
		s.updateDisplayParameters()
	case ParamAmplitude:
		s.amplitude.Store(clamp(value, MinAmplitude, MaxAmplitude))
	}
}

// GenerateSamples returns count samples, or nil when stopped or count <= 0.
func (s *Sine) GenerateSamples(count int) []float64 {
	if !s.running.Load() || count <= 0 {
		return nil
	}
	return s.GenerateInto(make([]float64, count))
}

// GenerateInto fills dst with one block and returns it. A stopped oscillator
// returns dst[:0] and leaves the phase untouched.
func (s *Sine) GenerateInto(dst []float64) []float64 {
	count := len(dst)
	if !s.running.Load() || count == 0 {
		return dst[:0]
	}

	s.updateDisplayParameters()

	amplitude := s.amplitude.Load()
	phase := s.phase.Load()
	phaseStep := twoPi * s.displayCycles.Load() / float64(count)

	for i := range dst {
		dst[i] = amplitude * math.Sin(phase+float64(i)*phaseStep)
	}

	s.phase.Store(wrapPhase(phase + velocity(s.frequency.Load())))
	return dst
}

// updateDisplayParameters maps frequency on a log scale between MinFrequency
// and MaxFrequency onto [minCycles, maxCycles] cycles per block.
func (s *Sine) updateDisplayParameters() {
	cycles := displayCyclesFor(s.frequency.Load())
	s.displayCycles.Store(cycles)
	s.currentZoom.Store(clamp(baseCycles/cycles, minZoom, maxZoom))
}

func displayCyclesFor(freq float64) float64 {
	logMin := math.Log10(MinFrequency)
	logMax := math.Log10(MaxFrequency)
	ratio := clamp((math.Log10(freq)-logMin)/(logMax-logMin), 0, 1)
	return minCycles + ratio*(maxCycles-minCycles)
}

// velocity is the per-block advance of the persistent phase. It does not
// depend on block length.
func velocity(freq float64) float64 {
	v := baseVelocity * (1 + math.Log10(freq/baseFrequency+1))
	return math.Min(v, maxVelocity)
}

func wrapPhase(p float64) float64 {
	for p >= twoPi {
		p -= twoPi
	}
	return p
}
