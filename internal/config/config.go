package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Formation override (YAML). Empty means the built-in formation.
	FormationPath string

	// Sweep
	SweepWorkers int
	// Cells per second when streaming a sweep to viewers; 0 is unpaced.
	StreamPace float64

	// Trial
	TimeStep float64
	MaxSteps int

	// Viewer feed
	FanoutPort int
	FanoutAddr string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		FormationPath: envStr("FORMATION_PATH", ""),

		SweepWorkers: envInt("SWEEP_WORKERS", 1),
		StreamPace:   envFloat("STREAM_PACE", 0),

		TimeStep: envFloat("TIME_STEP", 0.1),
		MaxSteps: envInt("MAX_STEPS", 100),

		FanoutPort: envInt("FANOUT_PORT", 8790),
		FanoutAddr: envStr("FANOUT_ADDR", "localhost:8790"),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
