// Package ingest turns datalogger exports into sample tables.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// toa5Marker opens the environment line of Campbell Scientific TOA5 files. The header
// row follows it, then a units row and a processing row that carry no samples.
const toa5Marker = "TOA5"

// ReadCSV parses a delimited export into a table named name. The delimiter is sniffed
// from the header line (comma, semicolon or tab). Short rows are padded with nulls and
// long rows are truncated so the table keeps a fixed column set.
func ReadCSV(name string, r io.Reader) (*domain.Table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrEmptyFile)
	}

	cr := csv.NewReader(stripBOM(br))
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", name, err)
	}

	skip := 0
	if len(header) > 0 && strings.Trim(header[0], `"`) == toa5Marker {
		header, err = cr.Read()
		if err != nil {
			return nil, fmt.Errorf("parse %s TOA5 header: %w", name, err)
		}
		skip = 2
	}

	columns := uniqueColumns(header)
	t := &domain.Table{
		Name:            name,
		Columns:         columns,
		TimestampColumn: domain.DetectTimestampColumn(columns),
	}

	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if line < skip {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(domain.Row, len(columns))
		for i := range columns {
			if i < len(rec) {
				row[i] = domain.ParseCell(rec[i])
			} else {
				row[i] = domain.NullCell()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile loads a table from disk, named after the file's base name.
func ReadFile(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(filepath.Base(path), f)
}

func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// uniqueColumns trims header names and suffixes repeats (".1", ".2", ...) so that
// every column name is distinct.
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("column_%d", i)
		}
		name := base
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func stripBOM(br *bufio.Reader) io.Reader {
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
	}
	return br
}
