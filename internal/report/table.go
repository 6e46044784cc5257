package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/geowise/station-healthcheck/internal/detect"
	"github.com/geowise/station-healthcheck/internal/domain"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	return table
}

// WriteSummary renders one row per analyzed file with the finding count of every
// detector. Not applicable detectors show "n/a" and disabled ones "-".
func WriteSummary(w io.Writer, results []domain.FileResult) {
	header := []string{"File", "Rows"}
	for _, k := range domain.Kinds {
		header = append(header, string(k))
	}
	table := newTable(w, header)
	for _, fr := range results {
		row := []string{fr.File, strconv.Itoa(fr.Rows)}
		for _, k := range domain.Kinds {
			row = append(row, summaryCell(fr.Results, k))
		}
		table.Append(row)
	}
	table.Render()
}

func summaryCell(rs domain.Results, k domain.DetectorKind) string {
	res, ok := rs[k]
	switch {
	case !ok:
		return "-"
	case !res.Applicable():
		return "n/a"
	case k == domain.KindAvailability && len(res.Findings) > 0:
		return fmt.Sprintf("%.1f%%", res.Findings[0].Value)
	}
	return strconv.Itoa(len(res.Findings))
}

// WriteFindings renders every finding of one file, detectors in report order.
func WriteFindings(w io.Writer, fr domain.FileResult) {
	table := newTable(w, []string{"Detector", "Column", "Rows", "Time", "Value", "Detail"})
	for _, k := range domain.Kinds {
		if k == domain.KindAvailability {
			continue
		}
		for _, f := range fr.Results[k].Findings {
			table.Append([]string{string(k), f.Column, rowSpan(f), timeOf(f), value(f), detail(f)})
		}
	}
	table.Render()
}

func rowSpan(f domain.Finding) string {
	if f.EndRow > f.Row {
		return fmt.Sprintf("%d-%d", f.Row, f.EndRow)
	}
	return strconv.Itoa(f.Row)
}

func timeOf(f domain.Finding) string {
	if f.Time.IsZero() {
		return ""
	}
	return f.Time.Format(timeLayout)
}

// value leaves the cell blank for detectors whose findings carry no reading.
func value(f domain.Finding) string {
	if f.Kind == domain.KindContinuity {
		return ""
	}
	return num(f.Value)
}

func detail(f domain.Finding) string {
	switch f.Kind {
	case domain.KindLevelShift:
		return fmt.Sprintf("previous %s, delta %.2f", num(f.Previous), f.Delta)
	case domain.KindBattery:
		return fmt.Sprintf("%s: %d alerts, %d critical", f.Severity, f.Alerts, f.Criticals)
	case domain.KindFrozen:
		return fmt.Sprintf("%d repeats", f.Count)
	case domain.KindContinuity:
		return "previous " + f.PrevTime.Format(timeLayout)
	}
	return ""
}

// WriteSignalView renders the signal table of one file. Flagged cells carry a "*".
func WriteSignalView(w io.Writer, v detect.SignalView) {
	fmt.Fprintf(w, "%s\n", v.File)
	if len(v.Columns) == 0 {
		fmt.Fprintf(w, "%s\n", v.Reason)
		return
	}

	header := []string{"Row"}
	if v.TimestampColumn != "" {
		header = append(header, v.TimestampColumn)
	}
	header = append(header, v.Columns...)
	table := newTable(w, header)
	for _, r := range v.Rows {
		row := []string{strconv.Itoa(r.Row)}
		if v.TimestampColumn != "" {
			row = append(row, r.Timestamp)
		}
		for i, val := range r.Values {
			if r.Flags[i] {
				val += " *"
			}
			row = append(row, val)
		}
		table.Append(row)
	}
	table.Render()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
