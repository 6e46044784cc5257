package detect

import (
	"slices"
	"strings"
	"time"

	"github.com/geowise/station-healthcheck/internal/domain"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp cell. Only text cells can hold a timestamp.
func ParseTimestamp(c domain.Cell) (time.Time, bool) {
	if c.Kind != domain.CellText {
		return time.Time{}, false
	}
	s := strings.Trim(strings.TrimSpace(c.Text), `'"`)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// view is the read-only index over a table shared by the detectors of one run.
type view struct {
	table *domain.Table
	class Classification
	tsCol int

	// times[i] is the parsed timestamp of row i; valid[i] is false when absent or unparseable.
	times []time.Time
	valid []bool

	// chrono lists rows with a valid timestamp in time order (stable). Without a
	// timestamp column it is the table order.
	chrono []int
	// all is chrono followed by the rows whose timestamp could not be parsed.
	all []int
}

func newView(t *domain.Table) *view {
	v := &view{
		table: t,
		class: ClassifyColumns(t.Columns, t.TimestampColumn),
		tsCol: -1,
		times: make([]time.Time, len(t.Rows)),
		valid: make([]bool, len(t.Rows)),
	}
	if t.TimestampColumn != "" {
		v.tsCol = t.ColumnIndex(t.TimestampColumn)
	}

	if v.tsCol < 0 {
		v.chrono = make([]int, len(t.Rows))
		for i := range t.Rows {
			v.chrono[i] = i
		}
		v.all = v.chrono
		return v
	}

	var invalid []int
	sorted := true
	for i, row := range t.Rows {
		ts, ok := ParseTimestamp(row[v.tsCol])
		if !ok {
			invalid = append(invalid, i)
			continue
		}
		v.times[i] = ts
		v.valid[i] = true
		if n := len(v.chrono); n > 0 && ts.Before(v.times[v.chrono[n-1]]) {
			sorted = false
		}
		v.chrono = append(v.chrono, i)
	}
	if !sorted {
		slices.SortStableFunc(v.chrono, func(a, b int) int {
			return v.times[a].Compare(v.times[b])
		})
	}
	v.all = append(slices.Clip(v.chrono), invalid...)
	return v
}

func (v *view) hasTimestamp() bool { return v.tsCol >= 0 }

// at returns the timestamp of a row, zero when unknown.
func (v *view) at(row int) time.Time {
	if v.valid[row] {
		return v.times[row]
	}
	return time.Time{}
}

func (v *view) cell(row, col int) domain.Cell {
	return v.table.Rows[row][col]
}
