package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"WAVESTREAM_FIFO", "WAVESTREAM_SHM_NAME", "SAMPLES_PER_FRAME", "FRAME_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.FIFOPath != "/tmp/sine_commands" {
		t.Errorf("expected default fifo path, got %q", cfg.FIFOPath)
	}
	if cfg.ShmName != "sine_buffer" {
		t.Errorf("expected default shm name, got %q", cfg.ShmName)
	}
	if cfg.SamplesPerFrame != 1000 {
		t.Errorf("expected 1000 samples per frame, got %d", cfg.SamplesPerFrame)
	}
	if cfg.FrameInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms frame interval, got %v", cfg.FrameInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WAVESTREAM_FIFO", "/run/wave.fifo")
	t.Setenv("SAMPLES_PER_FRAME", "256")
	t.Setenv("FRAME_INTERVAL", "20ms")

	cfg := Load()
	if cfg.FIFOPath != "/run/wave.fifo" {
		t.Errorf("got fifo path %q", cfg.FIFOPath)
	}
	if cfg.SamplesPerFrame != 256 {
		t.Errorf("got samples per frame %d", cfg.SamplesPerFrame)
	}
	if cfg.FrameInterval != 20*time.Millisecond {
		t.Errorf("got frame interval %v", cfg.FrameInterval)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Setenv("SAMPLES_PER_FRAME", "lots")
	t.Setenv("FRAME_INTERVAL", "-5ms")

	cfg := Load()
	if cfg.SamplesPerFrame != 1000 {
		t.Errorf("expected fallback 1000, got %d", cfg.SamplesPerFrame)
	}
	if cfg.FrameInterval != 50*time.Millisecond {
		t.Errorf("expected fallback 50ms, got %v", cfg.FrameInterval)
	}
}

func TestLoadListenerToggle(t *testing.T) {
	t.Setenv("STATUS_ADDR", "")
	t.Setenv("HEALTH_ADDR", "127.0.0.1:7000")

	cfg := Load()
	if cfg.StatusAddr != "" {
		t.Errorf("expected status listener disabled, got %q", cfg.StatusAddr)
	}
	if cfg.HealthAddr != "127.0.0.1:7000" {
		t.Errorf("got health addr %q", cfg.HealthAddr)
	}
}
