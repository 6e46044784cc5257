package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/geowise/station-healthcheck/internal/detect"
	"github.com/geowise/station-healthcheck/internal/domain"
)

type Config struct {
	Port           string
	DatabaseDSN    string // empty disables the station source
	Detect         detect.Config
	Workers        int
	AlarmThreshold float64 // percentage
	MaxUploadBytes int64
	SeedData       bool
	Verbose        bool
}

// Load reads the configuration from the environment, after applying a .env file from
// the working directory when one exists. Malformed numbers fall back to their default;
// an unknown detector name or an out-of-range detector setting is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	toggles, err := detect.ParseToggles(strings.Split(envOrDefault("DETECTORS", "all"), ","))
	if err != nil {
		return Config{}, fmt.Errorf("DETECTORS: %w", err)
	}

	dc := detect.DefaultConfig()
	if dc.LevelShiftThreshold, err = detectorFloat("LEVEL_SHIFT_THRESHOLD", detect.DefaultLevelShiftThreshold); err != nil {
		return Config{}, err
	}
	if dc.SignalThreshold, err = detectorFloat("SIGNAL_THRESHOLD", detect.DefaultSignalThreshold); err != nil {
		return Config{}, err
	}
	if dc.MinFrozenRun, err = detectorInt("FROZEN_MIN_RUN", detect.DefaultMinFrozenRun); err != nil {
		return Config{}, err
	}
	dc.Detectors = toggles
	if err := dc.Validate(); err != nil {
		return Config{}, err
	}

	return Config{
		Port:           envOrDefault("PORT", "8080"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		Detect:         dc,
		Workers:        parseInt(envOrDefault("WORKERS", ""), runtime.NumCPU()),
		AlarmThreshold: parseFloat(envOrDefault("ALARM_THRESHOLD", ""), 50),
		MaxUploadBytes: int64(parseInt(envOrDefault("MAX_UPLOAD_MB", ""), 32)) << 20,
		SeedData:       parseBool(os.Getenv("SEED_DATA")),
		Verbose:        parseBool(os.Getenv("LOG_VERBOSE")),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// detectorFloat reads a detector setting. Unlike the service settings, a value that
// is set but does not parse is an error.
func detectorFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidConfig, key, s)
	}
	return f, nil
}

func detectorInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidConfig, key, s)
	}
	return n, nil
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
