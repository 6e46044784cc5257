package monitor

// Alarm raises when too many recently analyzed tables carry findings, which usually
// means a fleet-wide problem (a gateway down, a bad firmware push) rather than one
// faulty station.
type Alarm struct {
	metrics   *Metrics
	threshold float64 // percentage
}

// NewAlarm creates an alarm with the given threshold.
func NewAlarm(metrics *Metrics, threshold float64) *Alarm {
	return &Alarm{metrics: metrics, threshold: threshold}
}

// IsRaised returns true if the sliding-window flagged-table rate exceeds the threshold.
func (a *Alarm) IsRaised() bool {
	snap := a.metrics.Snapshot()
	return snap.WindowFlaggedRate > a.threshold
}

// Report returns the current alarm state.
func (a *Alarm) Report() map[string]interface{} {
	snap := a.metrics.Snapshot()
	return map[string]interface{}{
		"alarm_raised":   snap.WindowFlaggedRate > a.threshold,
		"current_rate":   snap.WindowFlaggedRate,
		"threshold":      a.threshold,
		"window_tables":  snap.WindowTables,
		"window_flagged": snap.WindowFlagged,
	}
}
