package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind tags the raw representation of a table cell.
type CellKind uint8

const (
	CellNull CellKind = iota
	CellNumber
	CellText
)

// Cell is one raw value of a sample table as delivered by the loader.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

// NullCell returns an absent value.
func NullCell() Cell { return Cell{Kind: CellNull} }

// NumberCell returns a numeric value.
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Num: v} }

// TextCell returns a string value.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// ParseCell maps a raw loader field into a cell: empty is null, anything
// strconv.ParseFloat accepts is a number, everything else stays text.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NullCell()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) {
		return NumberCell(v)
	}
	return TextCell(raw)
}

// String renders the cell the way it appears in reports.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Row is one sample, aligned with Table.Columns.
type Row []Cell

// Table is an in-memory, nominally time-ordered set of samples from one monitored file.
type Table struct {
	Name            string   `json:"name"`
	Columns         []string `json:"columns"`
	TimestampColumn string   `json:"timestamp_column,omitempty"`
	Rows            []Row    `json:"-"`
}

// Validate checks the structural invariants the detectors rely on.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrMalformedTable)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: duplicate column %q", ErrMalformedTable, c)
		}
		seen[c] = struct{}{}
	}
	if t.TimestampColumn != "" {
		if _, ok := seen[t.TimestampColumn]; !ok {
			return fmt.Errorf("%w: timestamp column %q not in column set", ErrMalformedTable, t.TimestampColumn)
		}
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedTable, i, len(r), len(t.Columns))
		}
	}
	return nil
}

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DetectTimestampColumn returns the first column named timestamp or ts,
// ignoring case, surrounding spaces and quotes. Empty when none matches.
func DetectTimestampColumn(columns []string) string {
	for _, c := range columns {
		n := strings.ToLower(strings.Trim(strings.TrimSpace(c), `'"`))
		if n == "timestamp" || n == "ts" {
			return c
		}
	}
	return ""
}

// DetectorKind names one detector of the engine.
type DetectorKind string

const (
	KindCommunication DetectorKind = "communication"
	KindLevelShift    DetectorKind = "level_shift"
	KindAvailability  DetectorKind = "availability"
	KindBattery       DetectorKind = "battery"
	KindFrozen        DetectorKind = "frozen"
	KindSignal        DetectorKind = "signal"
	KindContinuity    DetectorKind = "continuity"
)

// Kinds lists every detector in report order.
var Kinds = []DetectorKind{
	KindCommunication,
	KindLevelShift,
	KindAvailability,
	KindBattery,
	KindFrozen,
	KindSignal,
	KindContinuity,
}

type Severity string

const (
	SeverityAlert    Severity = "alert"
	SeverityCritical Severity = "critical"
)

// Finding is one anomaly instance or aggregate produced by a detector.
// Fields a detector does not use stay zero.
type Finding struct {
	Kind      DetectorKind `json:"kind"`
	Column    string       `json:"column,omitempty"`
	Row       int          `json:"row"`
	EndRow    int          `json:"end_row,omitempty"`
	Time      time.Time    `json:"time,omitzero"`
	EndTime   time.Time    `json:"end_time,omitzero"`
	PrevTime  time.Time    `json:"prev_time,omitzero"`
	Value     float64      `json:"value"`
	Previous  float64      `json:"previous,omitempty"`
	Delta     float64      `json:"delta,omitempty"`
	Count     int          `json:"count,omitempty"`
	Alerts    int          `json:"alerts,omitempty"`
	Criticals int          `json:"criticals,omitempty"`
	Total     int          `json:"total,omitempty"`
	Severity  Severity     `json:"severity,omitempty"`
}

// Status distinguishes "ran, maybe with zero findings" from "preconditions unmet".
type Status string

const (
	StatusApplicable    Status = "applicable"
	StatusNotApplicable Status = "not_applicable"
)

// Result is the outcome of one detector over one table.
type Result struct {
	Kind     DetectorKind `json:"kind"`
	Status   Status       `json:"status"`
	Reason   string       `json:"reason,omitempty"`
	Findings []Finding    `json:"findings"`
}

// Applicable reports whether the detector could run.
func (r Result) Applicable() bool { return r.Status == StatusApplicable }

// Results maps each enabled detector to its result.
type Results map[DetectorKind]Result

// AnomalyCount sums findings across all detectors. The availability finding is a
// statistic rather than an anomaly and is not counted.
func (rs Results) AnomalyCount() int {
	n := 0
	for k, r := range rs {
		if k == KindAvailability {
			continue
		}
		n += len(r.Findings)
	}
	return n
}

// FileResult is the analysis of one monitored file.
type FileResult struct {
	File    string  `json:"file"`
	Rows    int     `json:"rows"`
	Results Results `json:"results"`
}

// Report is the exportable summary document for a batch of files.
type Report struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	FileName    string          `json:"file_name"`
	Sections    []ReportSection `json:"sections"`
}

// ReportSection covers one monitored file.
type ReportSection struct {
	File   string        `json:"file"`
	Blocks []ReportBlock `json:"blocks"`
}

// ReportBlock holds the lines written for one detector.
type ReportBlock struct {
	Kind    DetectorKind `json:"kind"`
	Heading string       `json:"heading"`
	Lines   []string     `json:"lines"`
}

// Station is a monitored site whose samples are kept in the database.
type Station struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channels  int       `json:"channels"`
	Samples   int       `json:"samples"`
	UpdatedAt time.Time `json:"updated_at"`
}
