package detect

import "github.com/geowise/station-healthcheck/internal/domain"

// continuityBreaks walks rows in table order and flags each valid timestamp that is
// earlier than the previous valid one.
func continuityBreaks(v *view) domain.Result {
	if !v.hasTimestamp() {
		return notApplicable(domain.KindContinuity, "no timestamp column")
	}
	res := applicable(domain.KindContinuity)
	prev := -1
	for row := range v.table.Rows {
		if !v.valid[row] {
			continue
		}
		if prev >= 0 && v.times[row].Before(v.times[prev]) {
			res.Findings = append(res.Findings, domain.Finding{
				Kind:     domain.KindContinuity,
				Column:   v.table.TimestampColumn,
				Row:      row,
				Time:     v.times[row],
				PrevTime: v.times[prev],
			})
		}
		prev = row
	}
	return res
}
