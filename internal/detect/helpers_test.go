package detect

import (
	"fmt"
	"time"

	"github.com/geowise/station-healthcheck/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// ts returns the text timestamp i hours after t0.
func ts(i int) string {
	return t0.Add(time.Duration(i) * time.Hour).Format("2006-01-02 15:04:05")
}

func at(i int) time.Time {
	return t0.Add(time.Duration(i) * time.Hour)
}

func cell(v any) domain.Cell {
	switch x := v.(type) {
	case nil:
		return domain.NullCell()
	case int:
		return domain.NumberCell(float64(x))
	case float64:
		return domain.NumberCell(x)
	case string:
		return domain.TextCell(x)
	}
	panic(fmt.Sprintf("unsupported cell value %T", v))
}

// newTable builds a table and detects its timestamp column by name.
func newTable(columns []string, rows ...[]any) *domain.Table {
	t := &domain.Table{Name: "test.csv", Columns: columns}
	t.TimestampColumn = domain.DetectTimestampColumn(columns)
	for _, r := range rows {
		row := make(domain.Row, len(r))
		for i, v := range r {
			row[i] = cell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// series builds a timestamped single-column table, one hour per value.
func series(column string, values ...any) *domain.Table {
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{ts(i), v}
	}
	return newTable([]string{"timestamp", column}, rows...)
}

func only(k domain.DetectorKind) Config {
	cfg := DefaultConfig()
	cfg.Detectors = Toggles{}
	cfg.Detectors.set(k)
	return cfg
}
