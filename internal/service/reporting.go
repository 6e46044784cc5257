package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowise/station-healthcheck/internal/domain"
)

const (
	reportTitle      = "GeoWise - Fault Report"
	reportTimeLayout = "2006-01-02 15:04:05"
)

var headings = map[domain.DetectorKind]string{
	domain.KindCommunication: "Communication failures",
	domain.KindLevelShift:    "Level shifts",
	domain.KindAvailability:  "Availability",
	domain.KindBattery:       "Battery",
	domain.KindFrozen:        "Frozen data",
	domain.KindSignal:        "Signal quality",
	domain.KindContinuity:    "Temporal continuity",
}

var noneFound = map[domain.DetectorKind]string{
	domain.KindCommunication: "No communication failures found.",
	domain.KindLevelShift:    "No level shifts found.",
	domain.KindAvailability:  "No availability data.",
	domain.KindBattery:       "No battery alerts found.",
	domain.KindFrozen:        "No frozen data found.",
	domain.KindSignal:        "No signal failures found.",
	domain.KindContinuity:    "No timestamp inconsistencies found.",
}

// ReportService builds the exportable fault report.
type ReportService struct {
	clock clockwork.Clock
}

// NewReportService creates a new ReportService. A nil clock means the wall clock.
func NewReportService(clock clockwork.Clock) *ReportService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ReportService{clock: clock}
}

// FileName returns the dated report file name for the current day.
func (s *ReportService) FileName() string {
	return "report_" + s.clock.Now().Format("02_01_2006") + ".txt"
}

// Build assembles the report for a batch of analyzed files. Each section holds one
// block per detector present in the results, in report order.
func (s *ReportService) Build(results []domain.FileResult) domain.Report {
	r := domain.Report{
		Title:       reportTitle,
		GeneratedAt: s.clock.Now(),
		FileName:    s.FileName(),
		Sections:    make([]domain.ReportSection, 0, len(results)),
	}
	for _, fr := range results {
		sec := domain.ReportSection{File: fr.File}
		for _, k := range domain.Kinds {
			res, ok := fr.Results[k]
			if !ok {
				continue
			}
			sec.Blocks = append(sec.Blocks, domain.ReportBlock{
				Kind:    k,
				Heading: headings[k],
				Lines:   blockLines(res),
			})
		}
		r.Sections = append(r.Sections, sec)
	}
	return r
}

func blockLines(res domain.Result) []string {
	if !res.Applicable() {
		return []string{"Not applicable: " + res.Reason + "."}
	}
	if len(res.Findings) == 0 {
		return []string{noneFound[res.Kind]}
	}
	lines := make([]string, 0, len(res.Findings))
	for _, f := range res.Findings {
		lines = append(lines, findingLine(f))
	}
	return lines
}

func findingLine(f domain.Finding) string {
	switch f.Kind {
	case domain.KindCommunication:
		return fmt.Sprintf("%s: %s at %s", f.Column, num(f.Value), where(f.Row, f.Time))
	case domain.KindLevelShift:
		return fmt.Sprintf("%s: %s -> %s (delta %.2f) at %s", f.Column, num(f.Previous), num(f.Value), f.Delta, where(f.Row, f.Time))
	case domain.KindAvailability:
		return fmt.Sprintf("%.2f%% of readings available (%d of %d)", f.Value, f.Count, f.Total)
	case domain.KindBattery:
		return fmt.Sprintf("%s: %d alerts, %d critical, last %s V at %s [%s]",
			f.Column, f.Alerts, f.Criticals, num(f.Value), where(f.EndRow, f.EndTime), f.Severity)
	case domain.KindFrozen:
		return fmt.Sprintf("%s: %s repeated %d times from %s to %s",
			f.Column, num(f.Value), f.Count, where(f.Row, f.Time), where(f.EndRow, f.EndTime))
	case domain.KindSignal:
		return fmt.Sprintf("%s: %s at %s", f.Column, num(f.Value), where(f.Row, f.Time))
	case domain.KindContinuity:
		return fmt.Sprintf("row %d: %s is earlier than previous %s",
			f.Row, f.Time.Format(reportTimeLayout), f.PrevTime.Format(reportTimeLayout))
	}
	return fmt.Sprintf("%s at row %d", f.Kind, f.Row)
}

// where names a row, with its time when the row had a parseable timestamp.
func where(row int, at time.Time) string {
	if at.IsZero() {
		return "row " + strconv.Itoa(row)
	}
	return fmt.Sprintf("row %d (%s)", row, at.Format(reportTimeLayout))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
