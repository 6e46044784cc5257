package seed

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/geowise/station-healthcheck/internal/domain"
)

const tsLayout = "2006-01-02 15:04:05"

var base = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// Station pairs a station id with its demo sample table.
type Station struct {
	ID    string
	Table *domain.Table
}

// Stations builds the demo stations. Between them they trip every detector:
//   - EST-PZ01: sentinel gaps, a level shift, a frozen run, low battery, weak signal,
//     one out-of-order timestamp.
//   - EST-IN02: a healthy inclinometer with no battery or signal channels.
//   - EST-WL03: a water level logger without a timestamp column.
func Stations() []Station {
	return []Station{
		{ID: "EST-PZ01", Table: piezometerStation()},
		{ID: "EST-IN02", Table: inclinometerStation()},
		{ID: "EST-WL03", Table: waterLevelStation()},
	}
}

func piezometerStation() *domain.Table {
	t := &domain.Table{
		Name:            "EST-PZ01.csv",
		Columns:         []string{"TIMESTAMP", "PZ1_digit", "PZ1_temp", "PZ2_kpa", "Battery_V", "N1_RSSIB", "N1_RSSIL"},
		TimestampColumn: "TIMESTAMP",
	}
	for i := 0; i < 48; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		// rows 40 and 41 arrive swapped
		switch i {
		case 40:
			at = base.Add(41 * time.Hour)
		case 41:
			at = base.Add(40 * time.Hour)
		}

		digit := domain.NumberCell(round(8120 + 2*math.Sin(float64(i)/4)))
		switch {
		case i == 10 || i == 11:
			digit = domain.NumberCell(-999)
		case i >= 20:
			digit = domain.NumberCell(round(8170 + 2*math.Sin(float64(i)/4)))
		}

		temp := domain.NumberCell(round(21 + float64(i%7)/10))
		if i >= 30 && i < 35 {
			temp = domain.NumberCell(21.4)
		}

		kpa := domain.NumberCell(round(101.3 + float64(i%5)/10))
		if i == 15 {
			kpa = domain.NullCell()
		}

		battery := domain.NumberCell(round(3.9 - float64(i)*0.013))

		rssib := domain.NumberCell(float64(40 + i%20))
		switch i {
		case 5, 6:
			rssib = domain.NumberCell(82)
		case 12:
			rssib = domain.TextCell("None")
		}
		rssil := domain.NumberCell(float64(30 + i%10))

		t.Rows = append(t.Rows, domain.Row{
			domain.TextCell(at.Format(tsLayout)), digit, temp, kpa, battery, rssib, rssil,
		})
	}
	return t
}

func inclinometerStation() *domain.Table {
	t := &domain.Table{
		Name:            "EST-IN02.csv",
		Columns:         []string{"timestamp", "INC1_A_mm", "INC1_B_mm"},
		TimestampColumn: "timestamp",
	}
	for i := 0; i < 24; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		t.Rows = append(t.Rows, domain.Row{
			domain.TextCell(at.Format(tsLayout)),
			domain.NumberCell(round(0.5 + float64(i)*0.01)),
			domain.NumberCell(round(-0.2 - float64(i)*0.02)),
		})
	}
	return t
}

func waterLevelStation() *domain.Table {
	t := &domain.Table{
		Name:    "EST-WL03.csv",
		Columns: []string{"NA1_mm", "Battery"},
	}
	for i := 0; i < 12; i++ {
		level := domain.NumberCell(float64(1500 + i))
		if i == 6 {
			level = domain.NumberCell(-998)
		}
		t.Rows = append(t.Rows, domain.Row{level, domain.NumberCell(12.6)})
	}
	return t
}

// GenerateSQL builds INSERT statements for the demo stations.
func GenerateSQL() string {
	var b strings.Builder
	b.WriteString("BEGIN;\n")

	for _, s := range Stations() {
		t := s.Table
		id := quote(s.ID)
		b.WriteString("DELETE FROM stations WHERE station_id = " + id + ";\n")
		b.WriteString(fmt.Sprintf("INSERT INTO stations (station_id, name, timestamp_column) VALUES (%s, %s, %s);\n",
			id, quote(t.Name), quote(t.TimestampColumn)))

		tsCol := t.ColumnIndex(t.TimestampColumn)
		var positions []int
		for i, c := range t.Columns {
			if i == tsCol {
				continue
			}
			b.WriteString(fmt.Sprintf("INSERT INTO station_channels (station_id, position, channel) VALUES (%s, %d, %s);\n",
				id, len(positions), quote(c)))
			positions = append(positions, i)
		}

		for seq, row := range t.Rows {
			ts := "NULL"
			if tsCol >= 0 {
				ts = literal(row[tsCol])
			}
			b.WriteString("INSERT INTO station_readings (station_id, seq, position, ts_raw, raw_value) VALUES ")
			for pos, col := range positions {
				if pos > 0 {
					b.WriteString(", ")
				}
				b.WriteString("(" + id + ", " + strconv.Itoa(seq) + ", " + strconv.Itoa(pos) + ", " + ts + ", " + literal(row[col]) + ")")
			}
			b.WriteString(";\n")
		}
	}

	b.WriteString("COMMIT;\n")
	return b.String()
}

func literal(c domain.Cell) string {
	if c.Kind == domain.CellNull {
		return "NULL"
	}
	return quote(c.String())
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
