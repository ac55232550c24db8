package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	FIFOPath string
	ShmName  string

	SamplesPerFrame int
	FrameInterval   time.Duration
	TickInterval    time.Duration

	StatusAddr string
	HealthAddr string

	ControllerHTTPAddr string
	ControllerScript   string
	DialPoll           time.Duration

	ViewerPoll    time.Duration
	ViewerRefresh time.Duration
	ViewerPoints  int

	LogLevel string
}

func Load() *Config {
	return &Config{
		FIFOPath:           getEnv("WAVESTREAM_FIFO", "/tmp/sine_commands"),
		ShmName:            getEnv("WAVESTREAM_SHM_NAME", "sine_buffer"),
		SamplesPerFrame:    getEnvInt("SAMPLES_PER_FRAME", 1000),
		FrameInterval:      getEnvDuration("FRAME_INTERVAL", 50*time.Millisecond),
		TickInterval:       getEnvDuration("TICK_INTERVAL", time.Millisecond),
		StatusAddr:         getEnvAllowEmpty("STATUS_ADDR", ":9100"),
		HealthAddr:         getEnvAllowEmpty("HEALTH_ADDR", ":9101"),
		ControllerHTTPAddr: os.Getenv("CONTROLLER_HTTP_ADDR"),
		ControllerScript:   os.Getenv("CONTROLLER_SCRIPT"),
		DialPoll:           getEnvDuration("DIAL_POLL", 100*time.Millisecond),
		ViewerPoll:         getEnvDuration("VIEWER_POLL", 2*time.Millisecond),
		ViewerRefresh:      getEnvDuration("VIEWER_REFRESH", 30*time.Millisecond),
		ViewerPoints:       getEnvInt("VIEWER_POINTS", 800),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAllowEmpty treats an explicitly empty variable as a value, so
// listeners can be switched off with KEY="".
func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go duration strings ("50ms") and falls back on anything
// unparsable or non-positive.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
