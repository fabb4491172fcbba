package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

// PriceRowStore is an in-memory implementation of storage.PriceRowStore.
type PriceRowStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceRow // keyed by (date, instrument_id)
}

// NewPriceRowStore creates a new in-memory price row store.
func NewPriceRowStore() *PriceRowStore {
	return &PriceRowStore{
		data: make(map[string]*domain.PriceRow),
	}
}

// Compile-time interface check.
var _ storage.PriceRowStore = (*PriceRowStore)(nil)

// rowKey generates a unique key for a price row.
func rowKey(date, instrumentID string) string {
	return fmt.Sprintf("%s|%s", date, instrumentID)
}

// InsertBulk adds rows atomically. Fails the entire batch on any
// duplicate, existing or intra-batch.
func (s *PriceRowStore) InsertBulk(_ context.Context, rows []domain.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))

	// First pass: validate and check duplicates.
	for i := range rows {
		r := &rows[i]
		if r.Date == "" || r.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		key := rowKey(r.Date, r.InstrumentID)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all.
	for i := range rows {
		rowCopy := rows[i]
		s.data[rowKey(rowCopy.Date, rowCopy.InstrumentID)] = &rowCopy
	}

	return nil
}

// GetByDateRange retrieves all rows within [start, end], ordered by date
// ASC, instrument_id ASC.
func (s *PriceRowStore) GetByDateRange(_ context.Context, start, end string) ([]domain.PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceRow
	for _, r := range s.data {
		if r.Date >= start && r.Date <= end {
			result = append(result, *r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].InstrumentID < result[j].InstrumentID
	})
	return result, nil
}

// GetByInstrument retrieves one instrument's rows within [start, end],
// ordered by date ASC.
func (s *PriceRowStore) GetByInstrument(_ context.Context, instrumentID, start, end string) ([]domain.PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceRow
	for _, r := range s.data {
		if r.InstrumentID == instrumentID && r.Date >= start && r.Date <= end {
			result = append(result, *r)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
