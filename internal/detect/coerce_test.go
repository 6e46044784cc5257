package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geowise/station-healthcheck/internal/domain"
)

func TestDetect_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cell  domain.Cell
		state State
		value float64
	}{
		{"null", domain.NullCell(), Missing, 0},
		{"number", domain.NumberCell(12.5), Concrete, 12.5},
		{"zero", domain.NumberCell(0), Concrete, 0},
		{"sentinel 999", domain.NumberCell(-999), Sentinel, -999},
		{"sentinel 998", domain.NumberCell(-998), Sentinel, -998},
		{"near sentinel", domain.NumberCell(-999.5), Concrete, -999.5},
		{"nan", domain.NumberCell(math.NaN()), Missing, 0},
		{"numeric text", domain.TextCell(" 3.25 "), Concrete, 3.25},
		{"sentinel text", domain.TextCell("-999"), Sentinel, -999},
		{"quoted sentinel text", domain.TextCell(`"-998"`), Sentinel, -998},
		{"none", domain.TextCell("None"), Missing, 0},
		{"quoted none", domain.TextCell(`'NONE'`), Missing, 0},
		{"garbage", domain.TextCell("err"), Missing, 0},
		{"empty text", domain.TextCell("  "), Missing, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Read(tt.cell)
			require.Equal(t, tt.state, r.State)
			if tt.state != Missing {
				require.Equal(t, tt.value, r.Value)
			}
		})
	}
}

func TestDetect_ParseTimestamp(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"2024-03-01 00:00:00",
		"2024-03-01T00:00:00Z",
		"2024-03-01T00:00:00",
		"\"2024-03-01 00:00:00\"",
		"2024/03/01 00:00:00",
		"01/03/2024 00:00",
		"2024-03-01",
	} {
		got, ok := ParseTimestamp(domain.TextCell(s))
		require.True(t, ok, s)
		require.True(t, got.Equal(t0), "%s parsed as %s", s, got)
	}

	got, ok := ParseTimestamp(domain.TextCell("2024-03-01 00:00:00.500"))
	require.True(t, ok)
	require.Equal(t, 500000000, got.Nanosecond())

	for _, c := range []domain.Cell{
		domain.NullCell(),
		domain.NumberCell(1709251200),
		domain.TextCell("yesterday"),
		domain.TextCell(""),
	} {
		_, ok := ParseTimestamp(c)
		require.False(t, ok, "%+v", c)
	}
}
