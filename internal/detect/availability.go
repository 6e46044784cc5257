package detect

import "github.com/geowise/station-healthcheck/internal/domain"

// availability is the share of concrete cells over every technical cell, as one finding.
func availability(v *view) domain.Result {
	if len(v.class.Technical) == 0 {
		return notApplicable(domain.KindAvailability, "no columns relevant for availability")
	}
	total := len(v.class.Technical) * len(v.table.Rows)
	present := 0
	for _, col := range v.class.Technical {
		for _, row := range v.table.Rows {
			if Read(row[col]).State == Concrete {
				present++
			}
		}
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(present) / float64(total)
	}
	res := applicable(domain.KindAvailability)
	res.Findings = []domain.Finding{{
		Kind:  domain.KindAvailability,
		Value: pct,
		Count: present,
		Total: total,
	}}
	return res
}
