package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geowise/station-healthcheck/internal/domain"
)

func TestDetect_BuildSignalView(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"timestamp", "N1_RSSIB", "N1_RSSIL", "N2_RSSIB", "PZ1_mm"},
		[]any{ts(0), 40, 20, 10, 1},
		[]any{ts(1), 80, 20, 10, 1},
		[]any{ts(2), -999, 20, 10, 1},
		[]any{ts(3), 50, 20, 10, 1},
		[]any{ts(4), "None", 99, 10, 1},
	)
	v, err := BuildSignalView(tbl, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, domain.StatusApplicable, v.Status)
	require.Equal(t, "timestamp", v.TimestampColumn)
	require.Equal(t, []string{"N1_RSSIB", "N1_RSSIL"}, v.Columns)

	order := make([]int, len(v.Rows))
	for i, r := range v.Rows {
		order[i] = r.Row
	}
	require.Equal(t, []int{1, 4, 0, 2, 3}, order)

	require.True(t, v.Rows[0].Flagged)
	require.Equal(t, []bool{true, false}, v.Rows[0].Flags)
	require.Equal(t, []bool{false, true}, v.Rows[1].Flags)
	require.Equal(t, "", v.Rows[1].Values[0])
	require.Equal(t, "", v.Rows[3].Values[0])
	require.Equal(t, "40", v.Rows[2].Values[0])
	require.Equal(t, ts(4), v.Rows[1].Timestamp)
	require.Equal(t, at(4), v.Rows[1].Time)
}

func TestDetect_BuildSignalView_Empty(t *testing.T) {
	t.Parallel()

	v, err := BuildSignalView(series("PZ1_mm", 1), DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, domain.StatusNotApplicable, v.Status)
	require.Empty(t, v.Rows)

	v, err = BuildSignalView(series("N1_RSSIB", 75, -999, "none"), DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, domain.StatusApplicable, v.Status)
	require.Empty(t, v.Columns)
	require.Empty(t, v.Rows)
	require.NotEmpty(t, v.Reason)

	_, err = BuildSignalView(nil, DefaultConfig())
	require.ErrorIs(t, err, domain.ErrMalformedTable)
}

func TestDetect_BuildSignalView_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SignalThreshold = math.NaN()
	_, err := BuildSignalView(series("N1_RSSIB", 80, 90), cfg)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
