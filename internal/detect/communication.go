package detect

import "github.com/geowise/station-healthcheck/internal/domain"

// communicationFailures reports every sentinel cell in a technical column. Here the
// sentinel is the failure signal itself, so no row is skipped.
func communicationFailures(v *view) domain.Result {
	if len(v.class.Technical) == 0 {
		return notApplicable(domain.KindCommunication, "no communication/technical columns")
	}
	res := applicable(domain.KindCommunication)
	for _, col := range v.class.Technical {
		for _, row := range v.all {
			r := Read(v.cell(row, col))
			if r.State != Sentinel {
				continue
			}
			res.Findings = append(res.Findings, domain.Finding{
				Kind:   domain.KindCommunication,
				Column: v.table.Columns[col],
				Row:    row,
				Time:   v.at(row),
				Value:  r.Value,
			})
		}
	}
	return res
}
