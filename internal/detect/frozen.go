package detect

import "github.com/geowise/station-healthcheck/internal/domain"

// run is a maximal stretch of identical concrete readings, as positions in the scanned order.
type run struct {
	value      float64
	start, end int
}

// runs folds a sequence of readings into runs of identical concrete values. Missing
// and sentinel readings end the current run and never start one.
func runs(readings []Reading) []run {
	var out []run
	open := false
	var cur run
	for i, r := range readings {
		if r.State != Concrete {
			if open {
				out = append(out, cur)
				open = false
			}
			continue
		}
		if open && r.Value == cur.value {
			cur.end = i
			continue
		}
		if open {
			out = append(out, cur)
		}
		cur = run{value: r.Value, start: i, end: i}
		open = true
	}
	if open {
		out = append(out, cur)
	}
	return out
}

// numericColumns returns every non-timestamp column with no text cells. The "None"
// no-reading marker counts as null.
func numericColumns(t *domain.Table, tsCol int) []int {
	var cols []int
	for c := range t.Columns {
		if c == tsCol {
			continue
		}
		numeric := true
		for _, row := range t.Rows {
			if row[c].Kind == domain.CellText && !isNoneText(row[c]) {
				numeric = false
				break
			}
		}
		if numeric {
			cols = append(cols, c)
		}
	}
	return cols
}

// frozenData reports runs of at least minRun identical consecutive readings in time order.
func frozenData(v *view, minRun int) domain.Result {
	cols := numericColumns(v.table, v.tsCol)
	if len(cols) == 0 {
		return notApplicable(domain.KindFrozen, "no numeric columns")
	}
	res := applicable(domain.KindFrozen)
	readings := make([]Reading, len(v.chrono))
	for _, col := range cols {
		for i, row := range v.chrono {
			readings[i] = Read(v.cell(row, col))
		}
		for _, r := range runs(readings) {
			n := r.end - r.start + 1
			if n < minRun {
				continue
			}
			first, last := v.chrono[r.start], v.chrono[r.end]
			res.Findings = append(res.Findings, domain.Finding{
				Kind:    domain.KindFrozen,
				Column:  v.table.Columns[col],
				Row:     first,
				EndRow:  last,
				Time:    v.at(first),
				EndTime: v.at(last),
				Value:   r.value,
				Count:   n,
			})
		}
	}
	return res
}
