package detect

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/geowise/station-healthcheck/internal/domain"
)

func TestDetect_Run_CommunicationFailures(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"timestamp", "PZ1_digit", "PZ1_kpa", "Battery"},
		[]any{ts(0), 1.0, -999, -999},
		[]any{ts(1), -999, 2.0, 12.0},
		[]any{"garbage", "-998", nil, 12.0},
		[]any{ts(3), "None", -997, 12.0},
	)
	res, err := Run(tbl, only(domain.KindCommunication))
	require.NoError(t, err)
	require.Len(t, res, 1)

	got := res[domain.KindCommunication]
	require.True(t, got.Applicable())
	want := []domain.Finding{
		{Kind: domain.KindCommunication, Column: "PZ1_digit", Row: 1, Time: at(1), Value: -999},
		{Kind: domain.KindCommunication, Column: "PZ1_digit", Row: 2, Value: -998},
		{Kind: domain.KindCommunication, Column: "PZ1_kpa", Row: 0, Time: at(0), Value: -999},
	}
	if diff := cmp.Diff(want, got.Findings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_Run_CommunicationFailures_NoTechnicalColumns(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"timestamp", "Battery"}, []any{ts(0), -999})
	res, err := Run(tbl, DefaultConfig())
	require.NoError(t, err)

	for _, k := range []domain.DetectorKind{domain.KindCommunication, domain.KindLevelShift, domain.KindAvailability} {
		require.Equal(t, domain.StatusNotApplicable, res[k].Status, k)
		require.NotEmpty(t, res[k].Reason, k)
		require.Empty(t, res[k].Findings, k)
	}
}

func TestDetect_Run_LevelShift(t *testing.T) {
	t.Parallel()

	t.Run("only the jump above threshold", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("PZ1_kpa", 10, 11, 25), only(domain.KindLevelShift))
		require.NoError(t, err)
		want := []domain.Finding{{
			Kind: domain.KindLevelShift, Column: "PZ1_kpa", Row: 2, Time: at(2),
			Value: 25, Previous: 11, Delta: 14,
		}}
		require.Empty(t, cmp.Diff(want, res[domain.KindLevelShift].Findings))
	})

	t.Run("sentinels and gaps are skipped", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("PZ1_kpa", 10, -999, nil, "None", 12, -998, 30), only(domain.KindLevelShift))
		require.NoError(t, err)
		got := res[domain.KindLevelShift].Findings
		require.Len(t, got, 1)
		require.Equal(t, 6, got[0].Row)
		require.Equal(t, 12.0, got[0].Previous)
		require.Equal(t, 18.0, got[0].Delta)
	})

	t.Run("difference equal to threshold is not a shift", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("PZ1_kpa", 0, 10, 0), only(domain.KindLevelShift))
		require.NoError(t, err)
		require.Empty(t, res[domain.KindLevelShift].Findings)
	})

	t.Run("custom threshold", func(t *testing.T) {
		t.Parallel()
		cfg := only(domain.KindLevelShift)
		cfg.LevelShiftThreshold = 0.5
		res, err := Run(series("PZ1_kpa", 10, 11, 11.2), cfg)
		require.NoError(t, err)
		require.Len(t, res[domain.KindLevelShift].Findings, 1)
		require.Equal(t, 1, res[domain.KindLevelShift].Findings[0].Row)
	})

	t.Run("uses chronological order", func(t *testing.T) {
		t.Parallel()
		tbl := newTable([]string{"timestamp", "PZ1_kpa"},
			[]any{ts(2), 25},
			[]any{ts(0), 10},
			[]any{ts(1), 11},
			[]any{"not a time", 500},
		)
		res, err := Run(tbl, only(domain.KindLevelShift))
		require.NoError(t, err)
		got := res[domain.KindLevelShift].Findings
		require.Len(t, got, 1)
		require.Equal(t, 0, got[0].Row)
		require.Equal(t, at(2), got[0].Time)
		require.Equal(t, 11.0, got[0].Previous)
	})
}

func TestDetect_Run_Availability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   *domain.Table
		percent float64
		count   int
		total   int
	}{
		{
			name: "all present",
			table: newTable([]string{"timestamp", "a_mm", "b_hz"},
				[]any{ts(0), 1, 2},
				[]any{ts(1), 3, 4},
			),
			percent: 100, count: 4, total: 4,
		},
		{
			name: "all missing or sentinel",
			table: newTable([]string{"timestamp", "a_mm", "b_hz"},
				[]any{ts(0), -999, nil},
				[]any{ts(1), "None", -998},
			),
			percent: 0, count: 0, total: 4,
		},
		{
			name: "mixed",
			table: newTable([]string{"timestamp", "a_mm", "b_hz", "Battery"},
				[]any{ts(0), 1, -999, nil},
				[]any{ts(1), 2, 3, nil},
			),
			percent: 75, count: 3, total: 4,
		},
		{
			name:    "no rows",
			table:   newTable([]string{"timestamp", "a_mm"}),
			percent: 0, count: 0, total: 0,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := Run(tt.table, only(domain.KindAvailability))
			require.NoError(t, err)
			r := res[domain.KindAvailability]
			require.True(t, r.Applicable())
			require.Len(t, r.Findings, 1)
			require.InDelta(t, tt.percent, r.Findings[0].Value, 1e-9)
			require.Equal(t, tt.count, r.Findings[0].Count)
			require.Equal(t, tt.total, r.Findings[0].Total)
		})
	}
}

func TestDetect_Run_Battery(t *testing.T) {
	t.Parallel()

	t.Run("alert and critical bands", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("Battery_V", 3.5, 3.4, 3.2, -1, 6), only(domain.KindBattery))
		require.NoError(t, err)
		r := res[domain.KindBattery]
		require.True(t, r.Applicable())
		require.Len(t, r.Findings, 1)
		f := r.Findings[0]
		require.Equal(t, "Battery_V", f.Column)
		require.Equal(t, 1, f.Alerts)
		require.Equal(t, 1, f.Criticals)
		require.Equal(t, 2, f.Count)
		require.Equal(t, domain.SeverityCritical, f.Severity)
		require.Equal(t, 1, f.Row)
		require.Equal(t, 2, f.EndRow)
	})

	t.Run("boundaries", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("battery", 3.45, 3.3, 0, 5, -999), only(domain.KindBattery))
		require.NoError(t, err)
		f := res[domain.KindBattery].Findings
		require.Len(t, f, 1)
		require.Equal(t, 0, f[0].Alerts)
		require.Equal(t, 2, f[0].Criticals)
	})

	t.Run("alert only", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("battery", 3.44, 3.31, 12), only(domain.KindBattery))
		require.NoError(t, err)
		f := res[domain.KindBattery].Findings
		require.Len(t, f, 1)
		require.Equal(t, 2, f[0].Alerts)
		require.Equal(t, domain.SeverityAlert, f[0].Severity)
	})

	t.Run("healthy columns produce no finding", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("battery", 4.1, 4.0, 3.9), only(domain.KindBattery))
		require.NoError(t, err)
		r := res[domain.KindBattery]
		require.True(t, r.Applicable())
		require.Empty(t, r.Findings)
	})

	t.Run("no battery columns", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("a_mm", 3.2), only(domain.KindBattery))
		require.NoError(t, err)
		r := res[domain.KindBattery]
		require.False(t, r.Applicable())
		require.Equal(t, "no battery columns", r.Reason)
	})
}

func TestDetect_Run_Frozen(t *testing.T) {
	t.Parallel()

	t.Run("two runs, trailing single ignored", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("PZ1_mm", 5, 5, 5, 2, 2, 2, 2, 9), only(domain.KindFrozen))
		require.NoError(t, err)
		want := []domain.Finding{
			{Kind: domain.KindFrozen, Column: "PZ1_mm", Row: 0, EndRow: 2, Time: at(0), EndTime: at(2), Value: 5, Count: 3},
			{Kind: domain.KindFrozen, Column: "PZ1_mm", Row: 3, EndRow: 6, Time: at(3), EndTime: at(6), Value: 2, Count: 4},
		}
		require.Empty(t, cmp.Diff(want, res[domain.KindFrozen].Findings))
	})

	t.Run("run spanning the whole table", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("x", 1, 1, 1, 1), only(domain.KindFrozen))
		require.NoError(t, err)
		f := res[domain.KindFrozen].Findings
		require.Len(t, f, 1)
		require.Equal(t, 0, f[0].Row)
		require.Equal(t, 3, f[0].EndRow)
		require.Equal(t, 4, f[0].Count)
	})

	t.Run("disjoint runs of one value stay separate", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("x", 7, 7, 7, 1, 7, 7, 7), only(domain.KindFrozen))
		require.NoError(t, err)
		f := res[domain.KindFrozen].Findings
		require.Len(t, f, 2)
		require.Equal(t, 0, f[0].Row)
		require.Equal(t, 4, f[1].Row)
	})

	t.Run("nulls and sentinels never freeze", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("x", nil, nil, nil, -999, -999, -999, 4, nil, 4, 4), only(domain.KindFrozen))
		require.NoError(t, err)
		require.Empty(t, res[domain.KindFrozen].Findings)
	})

	t.Run("none marker breaks a run without excluding the column", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("PZ1_mm", 5, 5, 5, "None", 5, 5, 5, 5), only(domain.KindFrozen))
		require.NoError(t, err)
		require.True(t, res[domain.KindFrozen].Applicable())
		want := []domain.Finding{
			{Kind: domain.KindFrozen, Column: "PZ1_mm", Row: 0, EndRow: 2, Time: at(0), EndTime: at(2), Value: 5, Count: 3},
			{Kind: domain.KindFrozen, Column: "PZ1_mm", Row: 4, EndRow: 7, Time: at(4), EndTime: at(7), Value: 5, Count: 4},
		}
		require.Empty(t, cmp.Diff(want, res[domain.KindFrozen].Findings))
	})

	t.Run("text columns and the timestamp are not scanned", func(t *testing.T) {
		t.Parallel()
		tbl := newTable([]string{"timestamp", "status", "x"},
			[]any{ts(0), "ok", 1},
			[]any{ts(0), "ok", 2},
			[]any{ts(0), "ok", 3},
		)
		res, err := Run(tbl, only(domain.KindFrozen))
		require.NoError(t, err)
		require.Empty(t, res[domain.KindFrozen].Findings)
	})

	t.Run("custom minimum run", func(t *testing.T) {
		t.Parallel()
		cfg := only(domain.KindFrozen)
		cfg.MinFrozenRun = 2
		res, err := Run(series("x", 1, 1, 2), cfg)
		require.NoError(t, err)
		require.Len(t, res[domain.KindFrozen].Findings, 1)
	})

	t.Run("no numeric columns", func(t *testing.T) {
		t.Parallel()
		res, err := Run(newTable([]string{"timestamp", "status"}, []any{ts(0), "ok"}), only(domain.KindFrozen))
		require.NoError(t, err)
		require.False(t, res[domain.KindFrozen].Applicable())
	})
}

func TestDetect_Runs(t *testing.T) {
	t.Parallel()

	rd := func(vs ...any) []Reading {
		out := make([]Reading, len(vs))
		for i, v := range vs {
			out[i] = Read(cell(v))
		}
		return out
	}
	require.Equal(t, []run{{5, 0, 2}, {2, 3, 6}, {9, 7, 7}}, runs(rd(5, 5, 5, 2, 2, 2, 2, 9)))
	require.Equal(t, []run{{1, 0, 0}, {1, 2, 2}}, runs(rd(1, nil, 1)))
	require.Nil(t, runs(rd(nil, -999)))
	require.Nil(t, runs(nil))
}

func TestDetect_Run_Signal(t *testing.T) {
	t.Parallel()

	res, err := Run(series("Modem_RSSIB", -999, 76, 75, "None", 90.5), only(domain.KindSignal))
	require.NoError(t, err)
	want := []domain.Finding{
		{Kind: domain.KindSignal, Column: "Modem_RSSIB", Row: 1, Time: at(1), Value: 76},
		{Kind: domain.KindSignal, Column: "Modem_RSSIB", Row: 4, Time: at(4), Value: 90.5},
	}
	require.Empty(t, cmp.Diff(want, res[domain.KindSignal].Findings))

	cfg := only(domain.KindSignal)
	cfg.SignalThreshold = 1000
	res, err = Run(series("Modem_RSSIL", -999, -998), cfg)
	require.NoError(t, err)
	require.Empty(t, res[domain.KindSignal].Findings)

	res, err = Run(series("a_mm", 100), only(domain.KindSignal))
	require.NoError(t, err)
	require.Equal(t, domain.StatusNotApplicable, res[domain.KindSignal].Status)
	require.Equal(t, "no signal columns", res[domain.KindSignal].Reason)
}

func TestDetect_Run_Continuity(t *testing.T) {
	t.Parallel()

	t.Run("one break", func(t *testing.T) {
		t.Parallel()
		tbl := newTable([]string{"timestamp", "x"},
			[]any{ts(0), 1},
			[]any{ts(1), 1},
			[]any{ts(0), 1},
		)
		res, err := Run(tbl, only(domain.KindContinuity))
		require.NoError(t, err)
		want := []domain.Finding{{
			Kind: domain.KindContinuity, Column: "timestamp", Row: 2, Time: at(0), PrevTime: at(1),
		}}
		require.Empty(t, cmp.Diff(want, res[domain.KindContinuity].Findings))
	})

	t.Run("non-decreasing has no breaks", func(t *testing.T) {
		t.Parallel()
		tbl := newTable([]string{"timestamp", "x"},
			[]any{ts(0), 1},
			[]any{ts(0), 1},
			[]any{ts(5), 1},
		)
		res, err := Run(tbl, only(domain.KindContinuity))
		require.NoError(t, err)
		require.Empty(t, res[domain.KindContinuity].Findings)
	})

	t.Run("unparseable rows are skipped", func(t *testing.T) {
		t.Parallel()
		tbl := newTable([]string{"TIMESTAMP", "x"},
			[]any{ts(3), 1},
			[]any{"??", 1},
			[]any{ts(2), 1},
			[]any{nil, 1},
			[]any{ts(4), 1},
		)
		res, err := Run(tbl, only(domain.KindContinuity))
		require.NoError(t, err)
		got := res[domain.KindContinuity].Findings
		require.Len(t, got, 1)
		require.Equal(t, 2, got[0].Row)
		require.Equal(t, at(3), got[0].PrevTime)
	})

	t.Run("single timestamp", func(t *testing.T) {
		t.Parallel()
		res, err := Run(series("x", 1), only(domain.KindContinuity))
		require.NoError(t, err)
		require.True(t, res[domain.KindContinuity].Applicable())
		require.Empty(t, res[domain.KindContinuity].Findings)
	})

	t.Run("no timestamp column", func(t *testing.T) {
		t.Parallel()
		res, err := Run(newTable([]string{"x_mm"}, []any{-999}, []any{1}), DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, domain.StatusNotApplicable, res[domain.KindContinuity].Status)

		comm := res[domain.KindCommunication]
		require.Len(t, comm.Findings, 1)
		require.True(t, comm.Findings[0].Time.IsZero())
	})
}

func TestDetect_Run_TogglesAndErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Detectors.Frozen = false
	cfg.Detectors.Signal = false
	res, err := Run(series("a_mm", 1), cfg)
	require.NoError(t, err)
	require.Len(t, res, 5)
	_, ok := res[domain.KindFrozen]
	require.False(t, ok)

	_, err = Run(nil, DefaultConfig())
	require.ErrorIs(t, err, domain.ErrMalformedTable)

	bad := series("a_mm", 1)
	bad.Rows = append(bad.Rows, domain.Row{domain.NullCell()})
	_, err = Run(bad, DefaultConfig())
	require.ErrorIs(t, err, domain.ErrMalformedTable)

	dup := &domain.Table{Columns: []string{"a", "a"}}
	_, err = Run(dup, DefaultConfig())
	require.ErrorIs(t, err, domain.ErrMalformedTable)

	cfg = DefaultConfig()
	cfg.MinFrozenRun = 1
	_, err = Run(series("a_mm", 1), cfg)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestDetect_Run_IdempotentAndNonMutating(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"timestamp", "PZ1_mm", "Battery", "N1_RSSIB"},
		[]any{ts(4), 1, 3.2, 80},
		[]any{ts(1), -999, 3.4, -999},
		[]any{ts(2), 50, 3.4, 10},
		[]any{ts(3), 50, 3.4, 10},
		[]any{ts(0), 50, 12, 10},
	)
	before := make([]domain.Row, len(tbl.Rows))
	for i, r := range tbl.Rows {
		before[i] = append(domain.Row(nil), r...)
	}

	first, err := Run(tbl, DefaultConfig())
	require.NoError(t, err)
	second, err := Run(tbl, DefaultConfig())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
	require.Equal(t, before, tbl.Rows)
	require.Len(t, first, len(domain.Kinds))
	require.Positive(t, first.AnomalyCount())
}

func TestDetect_ParseToggles(t *testing.T) {
	t.Parallel()

	tg, err := ParseToggles([]string{"frozen", " Level-Shift "})
	require.NoError(t, err)
	require.Equal(t, Toggles{Frozen: true, LevelShift: true}, tg)

	tg, err = ParseToggles(nil)
	require.NoError(t, err)
	require.Equal(t, AllDetectors(), tg)

	tg, err = ParseToggles([]string{"battery", "all"})
	require.NoError(t, err)
	require.Equal(t, AllDetectors(), tg)

	_, err = ParseToggles([]string{"magic"})
	require.ErrorIs(t, err, domain.ErrUnknownDetector)

	for _, k := range domain.Kinds {
		require.True(t, AllDetectors().Enabled(k), k)
		require.False(t, Toggles{}.Enabled(k), k)
	}
}

func TestDetect_ConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	for name, mutate := range map[string]func(*Config){
		"negative threshold": func(c *Config) { c.LevelShiftThreshold = -1 },
		"short run":          func(c *Config) { c.MinFrozenRun = 0 },
		"inverted battery":   func(c *Config) { c.BatteryCritical = 3.5 },
		"battery above 5 V":  func(c *Config) { c.BatteryAlert = 6 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig, name)
	}
}

func TestDetect_View_StableChronologicalOrder(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"timestamp", "x"},
		[]any{ts(1), 1},
		[]any{"bad", 2},
		[]any{ts(0), 3},
		[]any{ts(1), 4},
	)
	v := newView(tbl)
	require.Equal(t, []int{2, 0, 3}, v.chrono)
	require.Equal(t, []int{2, 0, 3, 1}, v.all)
	require.Equal(t, time.Time{}, v.at(1))
}
