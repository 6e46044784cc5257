package detect

import (
	"fmt"
	"math"
	"strings"

	"github.com/geowise/station-healthcheck/internal/domain"
)

const (
	DefaultLevelShiftThreshold = 10.0
	DefaultMinFrozenRun        = 3
	DefaultSignalThreshold     = 75.0
	DefaultBatteryAlert        = 3.45
	DefaultBatteryCritical     = 3.3

	batteryMinVolts = 0.0
	batteryMaxVolts = 5.0
)

// Toggles selects which detectors run.
type Toggles struct {
	Communication bool
	LevelShift    bool
	Availability  bool
	Battery       bool
	Frozen        bool
	Signal        bool
	Continuity    bool
}

// AllDetectors enables every detector.
func AllDetectors() Toggles {
	return Toggles{
		Communication: true,
		LevelShift:    true,
		Availability:  true,
		Battery:       true,
		Frozen:        true,
		Signal:        true,
		Continuity:    true,
	}
}

// Enabled reports whether the detector of the given kind runs.
func (t Toggles) Enabled(k domain.DetectorKind) bool {
	switch k {
	case domain.KindCommunication:
		return t.Communication
	case domain.KindLevelShift:
		return t.LevelShift
	case domain.KindAvailability:
		return t.Availability
	case domain.KindBattery:
		return t.Battery
	case domain.KindFrozen:
		return t.Frozen
	case domain.KindSignal:
		return t.Signal
	case domain.KindContinuity:
		return t.Continuity
	}
	return false
}

func (t *Toggles) set(k domain.DetectorKind) {
	switch k {
	case domain.KindCommunication:
		t.Communication = true
	case domain.KindLevelShift:
		t.LevelShift = true
	case domain.KindAvailability:
		t.Availability = true
	case domain.KindBattery:
		t.Battery = true
	case domain.KindFrozen:
		t.Frozen = true
	case domain.KindSignal:
		t.Signal = true
	case domain.KindContinuity:
		t.Continuity = true
	}
}

// ParseToggles enables the named detectors. "all" or an empty list enables every detector.
func ParseToggles(names []string) (Toggles, error) {
	var t Toggles
	picked := false
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == "all" {
			return AllDetectors(), nil
		}
		k := domain.DetectorKind(strings.ReplaceAll(name, "-", "_"))
		if !isKind(k) {
			return Toggles{}, fmt.Errorf("%w: %q", domain.ErrUnknownDetector, raw)
		}
		t.set(k)
		picked = true
	}
	if !picked {
		return AllDetectors(), nil
	}
	return t, nil
}

func isKind(k domain.DetectorKind) bool {
	for _, known := range domain.Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Config parameterizes one engine run.
type Config struct {
	LevelShiftThreshold float64
	MinFrozenRun        int
	SignalThreshold     float64
	BatteryAlert        float64
	BatteryCritical     float64
	Detectors           Toggles
}

// DefaultConfig enables every detector with the stock thresholds.
func DefaultConfig() Config {
	return Config{
		LevelShiftThreshold: DefaultLevelShiftThreshold,
		MinFrozenRun:        DefaultMinFrozenRun,
		SignalThreshold:     DefaultSignalThreshold,
		BatteryAlert:        DefaultBatteryAlert,
		BatteryCritical:     DefaultBatteryCritical,
		Detectors:           AllDetectors(),
	}
}

func (c Config) Validate() error {
	if c.LevelShiftThreshold < 0 || math.IsNaN(c.LevelShiftThreshold) {
		return fmt.Errorf("%w: level shift threshold must be >= 0, got %v", domain.ErrInvalidConfig, c.LevelShiftThreshold)
	}
	if math.IsNaN(c.SignalThreshold) {
		return fmt.Errorf("%w: signal threshold must be a number", domain.ErrInvalidConfig)
	}
	if c.MinFrozenRun < 2 {
		return fmt.Errorf("%w: minimum frozen run must be >= 2, got %d", domain.ErrInvalidConfig, c.MinFrozenRun)
	}
	if c.BatteryCritical >= c.BatteryAlert {
		return fmt.Errorf("%w: battery critical level %v must be below alert level %v", domain.ErrInvalidConfig, c.BatteryCritical, c.BatteryAlert)
	}
	if c.BatteryCritical < batteryMinVolts || c.BatteryAlert > batteryMaxVolts {
		return fmt.Errorf("%w: battery levels must lie within [%v, %v] V", domain.ErrInvalidConfig, batteryMinVolts, batteryMaxVolts)
	}
	return nil
}
