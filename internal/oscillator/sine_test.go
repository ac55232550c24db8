package oscillator

import (
	"math"
	"sync"
	"testing"
)

const tolerance = 1e-6

func TestNewDefaultSine(t *testing.T) {
	s := NewDefaultSine()
	if s.Frequency() != 100.0 {
		t.Errorf("expected frequency 100, got %f", s.Frequency())
	}
	if s.Amplitude() != 0.8 {
		t.Errorf("expected amplitude 0.8, got %f", s.Amplitude())
	}
	if s.IsRunning() || s.IsActive() {
		t.Error("new oscillator should be stopped")
	}
	if s.Phase() != 0 {
		t.Errorf("expected zero phase, got %f", s.Phase())
	}
}

func TestNewSineClampsAmplitude(t *testing.T) {
	s := NewSine(440, 3.0)
	if s.Amplitude() != 1.0 {
		t.Errorf("expected amplitude clamped to 1, got %f", s.Amplitude())
	}
}

func TestStartStop(t *testing.T) {
	s := NewDefaultSine()
	s.Start()
	if !s.IsActive() {
		t.Fatal("expected active after Start")
	}
	s.Stop()
	if s.IsActive() {
		t.Fatal("expected inactive after Stop")
	}
}

func TestGenerateWhileStopped(t *testing.T) {
	s := NewDefaultSine()
	s.Start()
	s.GenerateSamples(1000)
	s.Stop()

	phase := s.Phase()
	for i := 0; i < 3; i++ {
		if out := s.GenerateSamples(1000); len(out) != 0 {
			t.Fatalf("expected empty block while stopped, got %d samples", len(out))
		}
	}
	if s.Phase() != phase {
		t.Errorf("phase moved while stopped: %f -> %f", phase, s.Phase())
	}
}

func TestGenerateZeroCount(t *testing.T) {
	s := NewDefaultSine()
	s.Start()
	if out := s.GenerateSamples(0); len(out) != 0 {
		t.Errorf("expected empty block, got %d samples", len(out))
	}
	if s.Phase() != 0 {
		t.Errorf("phase moved on empty block: %f", s.Phase())
	}
}

func TestSamplesWithinAmplitude(t *testing.T) {
	freqs := []float64{1, 10, 100, 440, 1000, 5000, 22000}
	amps := []float64{0, 0.1, 0.5, 0.8, 1}
	for _, f := range freqs {
		for _, a := range amps {
			s := NewDefaultSine()
			s.SetParameter(ParamFrequency, f)
			s.SetParameter(ParamAmplitude, a)
			s.Start()
			for block := 0; block < 5; block++ {
				for i, v := range s.GenerateSamples(1000) {
					if v < -a-tolerance || v > a+tolerance {
						t.Fatalf("f=%g a=%g block %d sample %d: %f out of range", f, a, block, i, v)
					}
				}
			}
		}
	}
}

func TestSetParameterClamps(t *testing.T) {
	s := NewDefaultSine()

	s.SetParameter(ParamFrequency, 100000)
	if s.Frequency() != 22000.0 {
		t.Errorf("expected frequency 22000, got %f", s.Frequency())
	}
	s.SetParameter(ParamFrequency, 0.01)
	if s.Frequency() != 1.0 {
		t.Errorf("expected frequency 1, got %f", s.Frequency())
	}
	s.SetParameter(ParamAmplitude, -1)
	if s.Amplitude() != 0.0 {
		t.Errorf("expected amplitude 0, got %f", s.Amplitude())
	}
	s.SetParameter(ParamAmplitude, 7)
	if s.Amplitude() != 1.0 {
		t.Errorf("expected amplitude 1, got %f", s.Amplitude())
	}
}

func TestSetParameterUnknownName(t *testing.T) {
	s := NewDefaultSine()
	s.SetParameter("filename", 42)
	s.SetParameter("Frequency", 42)
	if s.Frequency() != 100 || s.Amplitude() != 0.8 {
		t.Errorf("unknown parameter changed state: f=%f a=%f", s.Frequency(), s.Amplitude())
	}
}

func TestSetParameterNonFinite(t *testing.T) {
	s := NewDefaultSine()
	s.SetParameter(ParamFrequency, math.NaN())
	s.SetParameter(ParamAmplitude, math.NaN())
	if s.Frequency() != 100 || s.Amplitude() != 0.8 {
		t.Errorf("NaN changed state: f=%f a=%f", s.Frequency(), s.Amplitude())
	}

	s.SetParameter(ParamFrequency, math.Inf(1))
	s.SetParameter(ParamAmplitude, math.Inf(-1))
	if s.Frequency() != MaxFrequency || s.Amplitude() != MinAmplitude {
		t.Errorf("infinities not clamped: f=%f a=%f", s.Frequency(), s.Amplitude())
	}
}

func TestDisplayParameters(t *testing.T) {
	tests := []struct {
		freq       float64
		wantCycles float64
		wantZoom   float64
	}{
		{1, 0.5, 2.0},
		{22000, 12.0, 0.5},
		{100, 0.5 + 11.5*2/math.Log10(22000), 0.5},
	}
	for _, tt := range tests {
		s := NewDefaultSine()
		s.SetParameter(ParamFrequency, tt.freq)
		if math.Abs(s.DisplayCycles()-tt.wantCycles) > tolerance {
			t.Errorf("f=%g: expected %f cycles, got %f", tt.freq, tt.wantCycles, s.DisplayCycles())
		}
		if math.Abs(s.CurrentZoom()-tt.wantZoom) > tolerance {
			t.Errorf("f=%g: expected zoom %f, got %f", tt.freq, tt.wantZoom, s.CurrentZoom())
		}
	}
}

func TestBlockSpansDisplayCycles(t *testing.T) {
	// At 1 Hz a block holds half a cycle: sin over [0, π) starts and ends near zero.
	s := NewDefaultSine()
	s.SetParameter(ParamFrequency, 1)
	s.SetParameter(ParamAmplitude, 1)
	s.Start()

	out := s.GenerateSamples(1000)
	if out[0] != 0 {
		t.Errorf("expected first sample 0, got %f", out[0])
	}
	if math.Abs(out[500]-1) > tolerance {
		t.Errorf("expected peak at midpoint, got %f", out[500])
	}
}

func TestPhaseContinuity(t *testing.T) {
	s := NewDefaultSine()
	s.SetParameter(ParamFrequency, 440)
	s.Start()

	for block := 0; block < 10; block++ {
		phase := s.Phase()
		out := s.GenerateSamples(1000)
		want := s.Amplitude() * math.Sin(phase)
		if math.Abs(out[0]-want) > tolerance {
			t.Fatalf("block %d: first sample %f does not continue phase %f (want %f)", block, out[0], phase, want)
		}
		step := wrapPhase(phase + velocity(440))
		if math.Abs(s.Phase()-step) > tolerance {
			t.Fatalf("block %d: phase advanced to %f, want %f", block, s.Phase(), step)
		}
	}
}

func TestPhaseAdvanceIndependentOfCount(t *testing.T) {
	a := NewDefaultSine()
	b := NewDefaultSine()
	a.Start()
	b.Start()

	for i := 0; i < 20; i++ {
		a.GenerateSamples(100)
		b.GenerateSamples(4096)
		if math.Abs(a.Phase()-b.Phase()) > tolerance {
			t.Fatalf("iteration %d: phase depends on block size: %f vs %f", i, a.Phase(), b.Phase())
		}
	}
}

func TestPhaseStaysWrapped(t *testing.T) {
	s := NewDefaultSine()
	s.SetParameter(ParamFrequency, 22000)
	s.Start()
	buf := make([]float64, 64)
	for i := 0; i < 5000; i++ {
		s.GenerateInto(buf)
		if p := s.Phase(); p < 0 || p >= 2*math.Pi {
			t.Fatalf("phase %f escaped [0, 2π) after %d blocks", p, i)
		}
	}
}

func TestVelocityBounds(t *testing.T) {
	if v := velocity(100); math.Abs(v-0.005*(1+math.Log10(2))) > 1e-12 {
		t.Errorf("unexpected velocity at 100 Hz: %f", v)
	}
	if v := velocity(1e12); v != maxVelocity {
		t.Errorf("expected velocity capped at %f, got %f", maxVelocity, v)
	}
}

func TestScenario100Hz(t *testing.T) {
	s := NewDefaultSine()
	s.Start()
	s.SetParameter(ParamFrequency, 100)
	s.SetParameter(ParamAmplitude, 0.8)

	first := s.GenerateSamples(1000)
	if len(first) != 1000 {
		t.Fatalf("expected 1000 samples, got %d", len(first))
	}
	for i, v := range first {
		if v < -0.8 || v > 0.8 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
	}

	phase := s.Phase()
	second := s.GenerateSamples(1000)
	if math.Abs(second[0]-0.8*math.Sin(phase)) > tolerance {
		t.Errorf("phase jump at block boundary: got %f want %f", second[0], 0.8*math.Sin(phase))
	}
}

func TestConcurrentParameterUpdates(t *testing.T) {
	s := NewDefaultSine()
	s.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.SetParameter(ParamFrequency, float64(1+i*20))
			s.SetParameter(ParamAmplitude, float64(i%10)/10)
		}
	}()

	buf := make([]float64, 256)
	for i := 0; i < 1000; i++ {
		for _, v := range s.GenerateInto(buf) {
			if math.Abs(v) > 1+tolerance {
				t.Fatalf("sample exceeds full scale: %f", v)
			}
		}
	}
	wg.Wait()
}
