package domain

import "errors"

var (
	// ErrMalformedTable is returned when a table is nil, has duplicate columns, or has rows
	// whose width does not match the column set.
	ErrMalformedTable = errors.New("malformed sample table")

	// ErrInvalidConfig is returned when a detector configuration is out of range.
	ErrInvalidConfig = errors.New("invalid detector configuration")

	// ErrUnknownDetector is returned when a detector name cannot be resolved.
	ErrUnknownDetector = errors.New("unknown detector")

	// ErrEmptyFile is returned when an uploaded file has no header row.
	ErrEmptyFile = errors.New("file has no header row")

	// ErrStationNotFound is returned when a station has no stored readings.
	ErrStationNotFound = errors.New("station not found")

	// ErrNoStationSource is returned when station lookups are made without a database.
	ErrNoStationSource = errors.New("no station source configured")
)
