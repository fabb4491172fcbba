package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

// PriceRowStore implements storage.PriceRowStore using PostgreSQL.
// Prices live in dsex_prices; the instrument to sector/category mapping
// lives in dsex_mapper and is joined on read so callers always see
// flattened rows.
type PriceRowStore struct {
	pool *Pool

	// pageSize bounds each range-read query; the price table can hold
	// years of data and one unbounded SELECT ties up the server.
	pageSize int

	// retryAttempts and retryDelay govern per-page retry on transient
	// failures.
	retryAttempts int
	retryDelay    time.Duration
}

// Read pagination and retry defaults, matching the upstream feed client.
const (
	defaultPageSize      = 1000
	defaultRetryAttempts = 3
	defaultRetryDelay    = 1 * time.Second
)

// NewPriceRowStore creates a new PriceRowStore.
func NewPriceRowStore(pool *Pool) *PriceRowStore {
	return &PriceRowStore{
		pool:          pool,
		pageSize:      defaultPageSize,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
}

// Compile-time interface check.
var _ storage.PriceRowStore = (*PriceRowStore)(nil)

const selectColumns = `
	p.date::text, p.trading_code,
	COALESCE(p.ltp, 0), COALESCE(p.ycp, 0),
	COALESCE(p.value_mn, 0), COALESCE(p.volume, 0), COALESCE(p.trade, 0),
	COALESCE(m.sector, ''), COALESCE(m.category, ''),
	COALESCE(p.openp, 0), COALESCE(p.high, 0), COALESCE(p.low, 0), COALESCE(p.closep, 0)
`

// InsertBulk adds rows atomically. Fails the entire batch on any
// duplicate (date, trading_code). Mapper rows are upserted so the latest
// sector/category classification wins.
func (s *PriceRowStore) InsertBulk(ctx context.Context, rows []domain.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].Date == "" || rows[i].InstrumentID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	mapperQuery := `
		INSERT INTO dsex_mapper (trading_code, sector, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (trading_code) DO UPDATE
		SET sector = EXCLUDED.sector, category = EXCLUDED.category
	`
	priceQuery := `
		INSERT INTO dsex_prices (
			date, trading_code, ltp, ycp, value_mn, volume, trade,
			openp, high, low, closep
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i := range rows {
		r := &rows[i]
		if _, err := tx.Exec(ctx, mapperQuery, r.InstrumentID, r.Sector, r.Category); err != nil {
			return fmt.Errorf("upsert mapper row: %w", err)
		}
		_, err := tx.Exec(ctx, priceQuery,
			r.Date, r.InstrumentID, r.LastPrice, r.PreviousClose,
			r.TradedValue, r.TradedVolume, r.TradeCount,
			r.Open, r.High, r.Low, r.Close,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByDateRange retrieves all rows within [start, end], ordered by date
// ASC, trading_code ASC. Reads are paginated; each page retries on
// transient failure before the whole call gives up.
func (s *PriceRowStore) GetByDateRange(ctx context.Context, start, end string) ([]domain.PriceRow, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM dsex_prices p
		LEFT JOIN dsex_mapper m USING (trading_code)
		WHERE p.date >= $1 AND p.date <= $2
		ORDER BY p.date ASC, p.trading_code ASC
		LIMIT $3 OFFSET $4
	`

	var all []domain.PriceRow
	for offset := 0; ; offset += s.pageSize {
		var page []domain.PriceRow
		err := s.withRetry(ctx, func() error {
			rows, err := s.pool.Query(ctx, query, start, end, s.pageSize, offset)
			if err != nil {
				return err
			}
			defer rows.Close()
			page, err = scanPriceRows(rows)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("query price rows page at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		if len(page) < s.pageSize {
			break
		}
	}
	return all, nil
}

// GetByInstrument retrieves one instrument's rows within [start, end],
// ordered by date ASC.
func (s *PriceRowStore) GetByInstrument(ctx context.Context, instrumentID, start, end string) ([]domain.PriceRow, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM dsex_prices p
		LEFT JOIN dsex_mapper m USING (trading_code)
		WHERE p.trading_code = $1 AND p.date >= $2 AND p.date <= $3
		ORDER BY p.date ASC
	`

	var result []domain.PriceRow
	err := s.withRetry(ctx, func() error {
		rows, err := s.pool.Query(ctx, query, instrumentID, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanPriceRows(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query instrument rows: %w", err)
	}
	return result, nil
}

// withRetry runs fn up to retryAttempts times, sleeping retryDelay
// between attempts. Context cancellation stops the retry loop.
func (s *PriceRowStore) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// scanPriceRows materializes a result set in selectColumns order.
func scanPriceRows(rows pgx.Rows) ([]domain.PriceRow, error) {
	var result []domain.PriceRow
	for rows.Next() {
		var r domain.PriceRow
		err := rows.Scan(
			&r.Date, &r.InstrumentID,
			&r.LastPrice, &r.PreviousClose,
			&r.TradedValue, &r.TradedVolume, &r.TradeCount,
			&r.Sector, &r.Category,
			&r.Open, &r.High, &r.Low, &r.Close,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
