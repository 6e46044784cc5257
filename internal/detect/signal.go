package detect

import (
	"fmt"
	"time"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// signalQuality flags RSSIB/RSSIL readings strictly above the threshold. Sentinels and
// "none" are no reading at all and never count as a weak signal.
func signalQuality(v *view, threshold float64) domain.Result {
	if len(v.class.Signal) == 0 {
		return notApplicable(domain.KindSignal, "no signal columns")
	}
	res := applicable(domain.KindSignal)
	for _, col := range v.class.Signal {
		for _, row := range v.all {
			r := Read(v.cell(row, col))
			if r.State != Concrete || r.Value <= threshold {
				continue
			}
			res.Findings = append(res.Findings, domain.Finding{
				Kind:   domain.KindSignal,
				Column: v.table.Columns[col],
				Row:    row,
				Time:   v.at(row),
				Value:  r.Value,
			})
		}
	}
	return res
}

// SignalView is the highlighted table of signal columns that have at least one failure.
type SignalView struct {
	File            string          `json:"file"`
	Status          domain.Status   `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	TimestampColumn string          `json:"timestamp_column,omitempty"`
	Columns         []string        `json:"columns"`
	Rows            []SignalViewRow `json:"rows"`
}

// SignalViewRow is one source row restricted to the view's columns. Cells holding a
// sentinel or "none" are blanked; Flags marks cells above the threshold.
type SignalViewRow struct {
	Row       int           `json:"row"`
	Timestamp string        `json:"timestamp,omitempty"`
	Time      time.Time     `json:"time,omitzero"`
	Cells     []domain.Cell `json:"-"`
	Values    []string      `json:"values"`
	Flags     []bool        `json:"flags"`
	Flagged   bool          `json:"flagged"`
}

// BuildSignalView keeps the signal columns with at least one reading above the
// threshold and orders rows with any flagged cell first, preserving table order
// within the flagged and unflagged groups.
func BuildSignalView(t *domain.Table, cfg Config) (SignalView, error) {
	if err := t.Validate(); err != nil {
		return SignalView{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SignalView{}, fmt.Errorf("signal view of %q: %w", t.Name, err)
	}
	v := newView(t)
	out := SignalView{File: t.Name, Status: domain.StatusApplicable}
	if len(v.class.Signal) == 0 {
		out.Status = domain.StatusNotApplicable
		out.Reason = "no RSSIB or RSSIL columns found"
		return out, nil
	}

	var cols []int
	for _, col := range v.class.Signal {
		for _, row := range t.Rows {
			if r := Read(row[col]); r.State == Concrete && r.Value > cfg.SignalThreshold {
				cols = append(cols, col)
				break
			}
		}
	}
	if len(cols) == 0 {
		out.Reason = "no instruments with signal failures"
		return out, nil
	}
	for _, col := range cols {
		out.Columns = append(out.Columns, t.Columns[col])
	}
	if v.hasTimestamp() {
		out.TimestampColumn = t.TimestampColumn
	}

	flagged := make([]SignalViewRow, 0, len(t.Rows))
	var rest []SignalViewRow
	for i, row := range t.Rows {
		vr := SignalViewRow{
			Row:    i,
			Time:   v.at(i),
			Cells:  make([]domain.Cell, len(cols)),
			Values: make([]string, len(cols)),
			Flags:  make([]bool, len(cols)),
		}
		if v.hasTimestamp() {
			vr.Timestamp = row[v.tsCol].String()
		}
		for j, col := range cols {
			r := Read(row[col])
			if r.State == Sentinel || isNoneText(row[col]) {
				vr.Cells[j] = domain.NullCell()
			} else {
				vr.Cells[j] = row[col]
			}
			vr.Values[j] = vr.Cells[j].String()
			if r.State == Concrete && r.Value > cfg.SignalThreshold {
				vr.Flags[j] = true
				vr.Flagged = true
			}
		}
		if vr.Flagged {
			flagged = append(flagged, vr)
		} else {
			rest = append(rest, vr)
		}
	}
	out.Rows = append(flagged, rest...)
	return out, nil
}
