package detect

import "strings"

// Class is a set of channel categories derived from a column name.
type Class uint8

const (
	ClassTechnical Class = 1 << iota
	ClassBattery
	ClassSignal
)

// Has reports whether c includes every category in o.
func (c Class) Has(o Class) bool { return o != 0 && c&o == o }

var technicalSuffixes = []string{"_digit", "_hz", "_mm", "_kpa", "_temp"}

var signalSuffixes = []string{"RSSIB", "RSSIL"}

// Classify tags a column by its name alone.
func Classify(name string) Class {
	var c Class
	lower := strings.ToLower(name)
	for _, s := range technicalSuffixes {
		if strings.HasSuffix(lower, s) {
			c |= ClassTechnical
			break
		}
	}
	if strings.Contains(lower, "battery") {
		c |= ClassBattery
	}
	sig := strings.Trim(strings.ToUpper(strings.TrimSpace(name)), `'"`)
	for _, s := range signalSuffixes {
		if strings.HasSuffix(sig, s) {
			c |= ClassSignal
			break
		}
	}
	return c
}

// Classification holds column indices per category for one table.
type Classification struct {
	Technical []int
	Battery   []int
	Signal    []int
}

// ClassifyColumns classifies every column except the timestamp column.
func ClassifyColumns(columns []string, timestampColumn string) Classification {
	var out Classification
	for i, name := range columns {
		if timestampColumn != "" && name == timestampColumn {
			continue
		}
		c := Classify(name)
		if c.Has(ClassTechnical) {
			out.Technical = append(out.Technical, i)
		}
		if c.Has(ClassBattery) {
			out.Battery = append(out.Battery, i)
		}
		if c.Has(ClassSignal) {
			out.Signal = append(out.Signal, i)
		}
	}
	return out
}
