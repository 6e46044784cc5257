package detect

import "github.com/geowise/station-healthcheck/internal/domain"

// batteryStatus counts alert and critical voltages per battery column. Readings outside
// [0, 5] V are ignored. Only columns with at least one hit produce a finding, which
// spans the first and last flagged rows and carries the last flagged voltage.
func batteryStatus(v *view, alert, critical float64) domain.Result {
	if len(v.class.Battery) == 0 {
		return notApplicable(domain.KindBattery, "no battery columns")
	}
	res := applicable(domain.KindBattery)
	for _, col := range v.class.Battery {
		f := domain.Finding{
			Kind:   domain.KindBattery,
			Column: v.table.Columns[col],
			Row:    -1,
		}
		for _, row := range v.all {
			r := Read(v.cell(row, col))
			if r.State != Concrete || r.Value < batteryMinVolts || r.Value > batteryMaxVolts {
				continue
			}
			switch {
			case r.Value <= critical:
				f.Criticals++
			case r.Value < alert:
				f.Alerts++
			default:
				continue
			}
			if f.Row < 0 {
				f.Row, f.Time = row, v.at(row)
			}
			f.Value = r.Value
			f.EndRow, f.EndTime = row, v.at(row)
		}
		if f.Alerts+f.Criticals == 0 {
			continue
		}
		f.Count = f.Alerts + f.Criticals
		f.Severity = domain.SeverityAlert
		if f.Criticals > 0 {
			f.Severity = domain.SeverityCritical
		}
		res.Findings = append(res.Findings, f)
	}
	return res
}
