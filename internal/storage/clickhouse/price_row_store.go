package clickhouse

import (
	"context"
	"fmt"
	"time"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

const dateLayout = "2006-01-02"

// PriceRowStore implements storage.PriceRowStore using ClickHouse.
// Sector and category are denormalized into each row so analytical scans
// never join. The table uses ReplacingMergeTree, so duplicates are also
// rejected explicitly at insert time to keep the append-only contract.
type PriceRowStore struct {
	conn *Conn
}

// NewPriceRowStore creates a new PriceRowStore.
func NewPriceRowStore(conn *Conn) *PriceRowStore {
	return &PriceRowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceRowStore = (*PriceRowStore)(nil)

// InsertBulk adds multiple rows. Fails entire batch on duplicate (date, trading_code).
func (s *PriceRowStore) InsertBulk(ctx context.Context, rows []domain.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		date string
		code string
	}
	seen := make(map[key]struct{})
	for i := range rows {
		r := &rows[i]
		if r.Date == "" || r.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			return storage.ErrInvalidInput
		}
		k := key{r.Date, r.InstrumentID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for i := range rows {
		exists, err := s.exists(ctx, rows[i].Date, rows[i].InstrumentID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO dsex_prices (
			date, trading_code, ltp, ycp, value_mn, volume, trade,
			sector, category, openp, high, low, closep
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		day, _ := time.Parse(dateLayout, r.Date)
		err = batch.Append(
			day, r.InstrumentID,
			r.LastPrice, r.PreviousClose, r.TradedValue, r.TradedVolume, int64(r.TradeCount),
			r.Sector, r.Category, r.Open, r.High, r.Low, r.Close,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByDateRange retrieves all rows within [start, end] (inclusive),
// ordered by date ASC, trading_code ASC.
func (s *PriceRowStore) GetByDateRange(ctx context.Context, start, end string) ([]domain.PriceRow, error) {
	startDay, endDay, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT date, trading_code, ltp, ycp, value_mn, volume, trade,
		       sector, category, openp, high, low, closep
		FROM dsex_prices FINAL
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, trading_code ASC
	`

	rows, err := s.conn.Query(ctx, query, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPriceRows(rows)
}

// GetByInstrument retrieves one instrument's rows within [start, end], ordered by date ASC.
func (s *PriceRowStore) GetByInstrument(ctx context.Context, instrumentID, start, end string) ([]domain.PriceRow, error) {
	startDay, endDay, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT date, trading_code, ltp, ycp, value_mn, volume, trade,
		       sector, category, openp, high, low, closep
		FROM dsex_prices FINAL
		WHERE trading_code = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, instrumentID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("query by instrument: %w", err)
	}
	defer rows.Close()

	return scanPriceRows(rows)
}

// exists checks if a row with the given key exists.
func (s *PriceRowStore) exists(ctx context.Context, date, instrumentID string) (bool, error) {
	day, _ := time.Parse(dateLayout, date)

	query := `
		SELECT count(*) FROM dsex_prices
		WHERE date = ? AND trading_code = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, day, instrumentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDay, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, storage.ErrInvalidInput
	}
	endDay, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, storage.ErrInvalidInput
	}
	return startDay, endDay, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPriceRows scans multiple rows.
func scanPriceRows(rows chRows) ([]domain.PriceRow, error) {
	var result []domain.PriceRow

	for rows.Next() {
		var r domain.PriceRow
		var day time.Time
		var trade int64

		err := rows.Scan(
			&day, &r.InstrumentID,
			&r.LastPrice, &r.PreviousClose, &r.TradedValue, &r.TradedVolume, &trade,
			&r.Sector, &r.Category, &r.Open, &r.High, &r.Low, &r.Close,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}

		r.Date = day.Format(dateLayout)
		r.TradeCount = int(trade)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return result, nil
}
