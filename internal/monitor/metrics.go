package monitor

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// Metrics tracks in-memory counters for analysis runs and mirrors them to Prometheus.
type Metrics struct {
	mu    sync.RWMutex
	clock clockwork.Clock

	tablesAnalyzed int64
	flaggedTables  int64
	failedTables   int64
	findings       map[domain.DetectorKind]int64
	notApplicable  map[domain.DetectorKind]int64

	// Sliding window for the flagged-table rate
	window []windowEntry
}

type windowEntry struct {
	ts      time.Time
	flagged bool
}

const windowDuration = 5 * time.Minute

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	TablesAnalyzed    int64                         `json:"tables_analyzed"`
	FlaggedTables     int64                         `json:"flagged_tables"`
	FailedTables      int64                         `json:"failed_tables"`
	Findings          map[domain.DetectorKind]int64 `json:"findings"`
	NotApplicable     map[domain.DetectorKind]int64 `json:"not_applicable"`
	WindowTables      int                           `json:"window_tables_5m"`
	WindowFlagged     int                           `json:"window_flagged_5m"`
	WindowFlaggedRate float64                       `json:"window_flagged_rate_5m"`
}

// NewMetrics creates a new Metrics instance. A nil clock means the wall clock.
func NewMetrics(clock clockwork.Clock) *Metrics {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Metrics{
		clock:         clock,
		findings:      make(map[domain.DetectorKind]int64),
		notApplicable: make(map[domain.DetectorKind]int64),
	}
}

// RecordAnalysis records one analyzed table. A table counts as flagged when any
// detector other than availability produced a finding.
func (m *Metrics) RecordAnalysis(fr domain.FileResult, elapsed time.Duration) {
	flagged := fr.Results.AnomalyCount() > 0

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tablesAnalyzed++
	if flagged {
		m.flaggedTables++
	}
	for k, r := range fr.Results {
		if !r.Applicable() {
			m.notApplicable[k]++
			notApplicableTotal.WithLabelValues(string(k)).Inc()
			continue
		}
		if k == domain.KindAvailability || len(r.Findings) == 0 {
			continue
		}
		m.findings[k] += int64(len(r.Findings))
		findingsTotal.WithLabelValues(string(k)).Add(float64(len(r.Findings)))
	}
	m.addWindow(flagged)

	tablesAnalyzed.Inc()
	analysisDuration.Observe(elapsed.Seconds())
}

// RecordFailure records a table that could not be analyzed.
func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedTables++
	tablesFailed.Inc()
}

func (m *Metrics) addWindow(flagged bool) {
	now := m.clock.Now()
	m.window = append(m.window, windowEntry{ts: now, flagged: flagged})
	m.pruneWindow(now)
}

func (m *Metrics) pruneWindow(now time.Time) {
	cutoff := now.Add(-windowDuration)
	i := 0
	for i < len(m.window) && m.window[i].ts.Before(cutoff) {
		i++
	}
	m.window = m.window[i:]
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.clock.Now().Add(-windowDuration)
	var windowTables, windowFlagged int
	for _, e := range m.window {
		if e.ts.After(cutoff) {
			windowTables++
			if e.flagged {
				windowFlagged++
			}
		}
	}

	var rate float64
	if windowTables > 0 {
		rate = float64(windowFlagged) / float64(windowTables) * 100
	}

	snap := MetricsSnapshot{
		TablesAnalyzed:    m.tablesAnalyzed,
		FlaggedTables:     m.flaggedTables,
		FailedTables:      m.failedTables,
		Findings:          make(map[domain.DetectorKind]int64, len(m.findings)),
		NotApplicable:     make(map[domain.DetectorKind]int64, len(m.notApplicable)),
		WindowTables:      windowTables,
		WindowFlagged:     windowFlagged,
		WindowFlaggedRate: rate,
	}
	for k, v := range m.findings {
		snap.Findings[k] = v
	}
	for k, v := range m.notApplicable {
		snap.NotApplicable[k] = v
	}
	return snap
}
