// Package report renders fault reports, analysis summaries and signal views as text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/geowise/station-healthcheck/internal/domain"
)

const (
	footerBrand = "GeoWise Health Check"
	timeLayout  = "2006-01-02 15:04:05"
	ruleWidth   = 72
)

// textWriter keeps the first write error so rendering code can stay linear.
type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// WriteText renders r as a plain text document. Every file section is one page and
// ends with a numbered footer.
func WriteText(w io.Writer, r domain.Report) error {
	tw := &textWriter{w: w}
	rule := strings.Repeat("=", ruleWidth)

	tw.printf("%s\n", r.Title)
	tw.printf("Generated: %s\n", r.GeneratedAt.Format(timeLayout))
	tw.printf("%s\n", rule)

	if len(r.Sections) == 0 {
		tw.printf("\nNo files analyzed.\n\n")
		writeFooter(tw, 1)
		return tw.err
	}

	for i, sec := range r.Sections {
		tw.printf("\nFile: %s\n", sec.File)
		for _, b := range sec.Blocks {
			tw.printf("\n%s\n", b.Heading)
			for _, line := range b.Lines {
				tw.printf("  - %s\n", line)
			}
		}
		tw.printf("\n")
		writeFooter(tw, i+1)
	}
	return tw.err
}

func writeFooter(tw *textWriter, page int) {
	tw.printf("%s\n", strings.Repeat("-", ruleWidth))
	tw.printf("%s - Page %d\n", footerBrand, page)
}
