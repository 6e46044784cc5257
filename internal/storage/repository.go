package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// Repository is the station reading source. It stores raw samples only; detector
// results are never persisted.
type Repository interface {
	// ListStations returns every station with stored readings, ordered by id.
	ListStations(ctx context.Context) ([]domain.Station, error)

	// LoadTable rebuilds a station's samples as a table in their original row order.
	LoadTable(ctx context.Context, stationID string) (*domain.Table, error)

	// SaveTable replaces a station's samples with the rows of t.
	SaveTable(ctx context.Context, stationID string, t *domain.Table) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListStations(ctx context.Context) ([]domain.Station, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.station_id, s.name, s.updated_at,
			(SELECT COUNT(*) FROM station_channels c WHERE c.station_id = s.station_id),
			(SELECT COUNT(DISTINCT seq) FROM station_readings d WHERE d.station_id = s.station_id)
		FROM stations s
		ORDER BY s.station_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt, &s.Channels, &s.Samples); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

func (r *PostgresRepository) LoadTable(ctx context.Context, stationID string) (*domain.Table, error) {
	var name, tsColumn string
	err := r.db.QueryRowContext(ctx, `
		SELECT name, timestamp_column FROM stations WHERE station_id = $1
	`, stationID).Scan(&name, &tsColumn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get station: %w", err)
	}

	chRows, err := r.db.QueryContext(ctx, `
		SELECT channel FROM station_channels WHERE station_id = $1 ORDER BY position
	`, stationID)
	if err != nil {
		return nil, fmt.Errorf("get channels: %w", err)
	}
	var channels []string
	for chRows.Next() {
		var ch string
		if err := chRows.Scan(&ch); err != nil {
			chRows.Close()
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	chRows.Close()
	if err := chRows.Err(); err != nil {
		return nil, fmt.Errorf("get channels: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, position, ts_raw, raw_value
		FROM station_readings
		WHERE station_id = $1
		ORDER BY seq, position
	`, stationID)
	if err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}
	defer rows.Close()

	var readings []storedReading
	for rows.Next() {
		var sr storedReading
		if err := rows.Scan(&sr.Seq, &sr.Position, &sr.Timestamp, &sr.Value); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}

	if name == "" {
		name = stationID
	}
	return pivot(name, tsColumn, channels, readings), nil
}

// SaveTable writes every non-timestamp cell as one long-format row through COPY.
func (r *PostgresRepository) SaveTable(ctx context.Context, stationID string, t *domain.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stations (station_id, name, timestamp_column, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (station_id) DO UPDATE SET
			name = $2, timestamp_column = $3, updated_at = NOW()
	`, stationID, t.Name, t.TimestampColumn); err != nil {
		return fmt.Errorf("upsert station: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM station_readings WHERE station_id = $1", stationID); err != nil {
		return fmt.Errorf("clear readings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM station_channels WHERE station_id = $1", stationID); err != nil {
		return fmt.Errorf("clear channels: %w", err)
	}

	tsCol := t.ColumnIndex(t.TimestampColumn)
	var positions []int
	for i, c := range t.Columns {
		if i == tsCol {
			continue
		}
		pos := len(positions)
		positions = append(positions, i)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO station_channels (station_id, position, channel) VALUES ($1, $2, $3)
		`, stationID, pos, c); err != nil {
			return fmt.Errorf("insert channel %s: %w", c, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("station_readings", "station_id", "seq", "position", "ts_raw", "raw_value"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for seq, row := range t.Rows {
		var ts any
		if tsCol >= 0 {
			ts = nullable(row[tsCol])
		}
		for pos, col := range positions {
			if _, err := stmt.ExecContext(ctx, stationID, seq, pos, ts, nullable(row[col])); err != nil {
				stmt.Close()
				return fmt.Errorf("copy reading %d/%d: %w", seq, pos, err)
			}
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// storedReading is one long-format cell as kept in station_readings.
type storedReading struct {
	Seq       int
	Position  int
	Timestamp sql.NullString
	Value     sql.NullString
}

func nullable(c domain.Cell) any {
	if c.Kind == domain.CellNull {
		return nil
	}
	return c.String()
}

// pivot rebuilds the wide table from long-format readings sorted by (seq, position).
// Positions outside the channel list are ignored.
func pivot(name, tsColumn string, channels []string, readings []storedReading) *domain.Table {
	t := &domain.Table{Name: name}
	offset := 0
	if tsColumn != "" {
		t.Columns = append(t.Columns, tsColumn)
		t.TimestampColumn = tsColumn
		offset = 1
	}
	t.Columns = append(t.Columns, channels...)

	lastSeq := -1
	var row domain.Row
	for _, sr := range readings {
		if sr.Seq != lastSeq || row == nil {
			row = make(domain.Row, len(t.Columns))
			if offset == 1 {
				row[0] = cellOf(sr.Timestamp)
			}
			t.Rows = append(t.Rows, row)
			lastSeq = sr.Seq
		}
		if sr.Position < 0 || sr.Position >= len(channels) {
			continue
		}
		row[offset+sr.Position] = cellOf(sr.Value)
	}
	return t
}

func cellOf(s sql.NullString) domain.Cell {
	if !s.Valid {
		return domain.NullCell()
	}
	return domain.ParseCell(s.String)
}
