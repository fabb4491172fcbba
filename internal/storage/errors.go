package storage

import "errors"

// Storage errors. The price table is append-only snapshot data: a trading
// day's row is never updated in place, only replaced by re-ingesting the
// day.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a (date, instrument_id)
	// pair that already exists.
	ErrDuplicateKey = errors.New("duplicate key: price row already ingested")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
