package detect

import (
	"math"
	"strconv"
	"strings"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// Sentinel readings mean "instrument reported no data" even though they are valid numbers.
const (
	SentinelNoData    = -999.0
	SentinelNoReading = -998.0
)

// State is the outcome of reading one cell.
type State uint8

const (
	Missing State = iota
	Concrete
	Sentinel
)

func (s State) String() string {
	switch s {
	case Concrete:
		return "concrete"
	case Sentinel:
		return "sentinel"
	default:
		return "missing"
	}
}

// Reading is a coerced cell. Value is meaningful for Concrete and Sentinel.
type Reading struct {
	State State
	Value float64
}

// IsSentinel reports whether v is one of the no-data placeholders.
func IsSentinel(v float64) bool {
	return v == SentinelNoData || v == SentinelNoReading
}

func isNoneText(c domain.Cell) bool {
	if c.Kind != domain.CellText {
		return false
	}
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(c.Text), `'"`))
	return strings.EqualFold(s, "none")
}

// Read coerces a raw cell. Text is parsed after trimming spaces and quotes;
// "none" in any case is missing, as is anything that does not parse.
func Read(c domain.Cell) Reading {
	var v float64
	switch c.Kind {
	case domain.CellNumber:
		v = c.Num
	case domain.CellText:
		if isNoneText(c) {
			return Reading{}
		}
		s := strings.TrimSpace(strings.Trim(strings.TrimSpace(c.Text), `'"`))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Reading{}
		}
		v = f
	default:
		return Reading{}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	if IsSentinel(v) {
		return Reading{State: Sentinel, Value: v}
	}
	return Reading{State: Concrete, Value: v}
}
