// Package oscillator synthesizes the waveform streamed to the viewer.
package oscillator

import (
	"math"
	"sync/atomic"
)

// Generator is any signal source the producer can drive.
type Generator interface {
	// GenerateSamples returns a block of count samples, or nothing when stopped.
	GenerateSamples(count int) []float64
	// SetParameter sets a named parameter. Unknown names are ignored.
	SetParameter(name string, value float64)
	Start()
	Stop()
	IsActive() bool
}

// Parameter names understood by SetParameter.
const (
	ParamFrequency = "frequency"
	ParamAmplitude = "amplitude"
)

const (
	DefaultFrequency = 100.0
	DefaultAmplitude = 0.8

	MinFrequency = 1.0
	MaxFrequency = 22000.0
	MinAmplitude = 0.0
	MaxAmplitude = 1.0
)

// atomicFloat stores a float64 as its IEEE-754 bits.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
