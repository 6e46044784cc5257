// Package detect scans one table of station readings and reports data-quality findings.
//
// Every detector is a pure function of the table and the configuration. The caller's
// table is never modified: detectors share a read-only index view that holds the
// column classification and the chronological row order.
package detect

import (
	"fmt"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// Run executes every enabled detector over t. Only a nil or malformed table or an
// invalid configuration yields an error; detectors whose inputs are absent report
// StatusNotApplicable instead.
func Run(t *domain.Table, cfg Config) (domain.Results, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("run detectors on %q: %w", t.Name, err)
	}

	v := newView(t)
	out := make(domain.Results, len(domain.Kinds))
	for _, k := range domain.Kinds {
		if !cfg.Detectors.Enabled(k) {
			continue
		}
		out[k] = runOne(v, k, cfg)
	}
	return out, nil
}

func runOne(v *view, k domain.DetectorKind, cfg Config) domain.Result {
	switch k {
	case domain.KindCommunication:
		return communicationFailures(v)
	case domain.KindLevelShift:
		return levelShifts(v, cfg.LevelShiftThreshold)
	case domain.KindAvailability:
		return availability(v)
	case domain.KindBattery:
		return batteryStatus(v, cfg.BatteryAlert, cfg.BatteryCritical)
	case domain.KindFrozen:
		return frozenData(v, cfg.MinFrozenRun)
	case domain.KindSignal:
		return signalQuality(v, cfg.SignalThreshold)
	case domain.KindContinuity:
		return continuityBreaks(v)
	}
	return notApplicable(k, "unknown detector")
}

func applicable(k domain.DetectorKind) domain.Result {
	return domain.Result{Kind: k, Status: domain.StatusApplicable, Findings: []domain.Finding{}}
}

func notApplicable(k domain.DetectorKind, reason string) domain.Result {
	return domain.Result{Kind: k, Status: domain.StatusNotApplicable, Reason: reason, Findings: []domain.Finding{}}
}
