package storage

import (
	"context"

	"dsex-insights/internal/domain"
)

// PriceRowStore provides access to the per-instrument-per-day price table.
// Dates are ISO strings (YYYY-MM-DD); ranges are inclusive on both ends.
type PriceRowStore interface {
	// InsertBulk adds rows atomically. Returns ErrDuplicateKey if any
	// (date, instrument_id) pair already exists, failing the whole batch.
	InsertBulk(ctx context.Context, rows []domain.PriceRow) error

	// GetByDateRange retrieves all rows within [start, end], ordered by
	// date ASC, instrument_id ASC.
	GetByDateRange(ctx context.Context, start, end string) ([]domain.PriceRow, error)

	// GetByInstrument retrieves one instrument's rows within [start, end],
	// ordered by date ASC.
	GetByInstrument(ctx context.Context, instrumentID, start, end string) ([]domain.PriceRow, error)
}
