package detect

import (
	"math"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// levelShifts flags readings that jump by more than the threshold from the previous
// concrete reading of the same column, in time order.
func levelShifts(v *view, threshold float64) domain.Result {
	if len(v.class.Technical) == 0 {
		return notApplicable(domain.KindLevelShift, "no communication/technical columns")
	}
	res := applicable(domain.KindLevelShift)
	for _, col := range v.class.Technical {
		var prev float64
		seen := false
		for _, row := range v.chrono {
			r := Read(v.cell(row, col))
			if r.State != Concrete {
				continue
			}
			if seen {
				if d := math.Abs(r.Value - prev); d > threshold {
					res.Findings = append(res.Findings, domain.Finding{
						Kind:     domain.KindLevelShift,
						Column:   v.table.Columns[col],
						Row:      row,
						Time:     v.at(row),
						Value:    r.Value,
						Previous: prev,
						Delta:    d,
					})
				}
			}
			prev, seen = r.Value, true
		}
	}
	return res
}
