package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

func createTestPriceRow(date, code string, last, prev float64) domain.PriceRow {
	return domain.PriceRow{
		Date:          date,
		InstrumentID:  code,
		LastPrice:     last,
		PreviousClose: prev,
		TradedValue:   75.5,
		TradedVolume:  2500,
		TradeCount:    40,
		Sector:        "Pharma",
		Category:      "A",
		Open:          prev,
		High:          last + 0.5,
		Low:           prev - 0.5,
		Close:         last,
	}
}

func TestPriceRowStore_InsertAndGetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceRowStore(conn)

	rows := []domain.PriceRow{
		createTestPriceRow("2024-01-02", "SQURPHARMA", 212, 210),
		createTestPriceRow("2024-01-01", "SQURPHARMA", 210, 208),
		createTestPriceRow("2024-01-01", "BXPHARMA", 95, 94),
	}
	require.NoError(t, store.InsertBulk(ctx, rows))

	got, err := store.GetByDateRange(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "BXPHARMA", got[0].InstrumentID)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "SQURPHARMA", got[1].InstrumentID)
	assert.Equal(t, "2024-01-02", got[2].Date)

	assert.Equal(t, "Pharma", got[0].Sector)
	assert.Equal(t, "A", got[0].Category)
	assert.InDelta(t, 95.0, got[0].LastPrice, 0.0001)
	assert.InDelta(t, 94.0, got[0].PreviousClose, 0.0001)
	assert.InDelta(t, 75.5, got[0].TradedValue, 0.0001)
	assert.Equal(t, 40, got[0].TradeCount)
}

func TestPriceRowStore_DuplicateRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceRowStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []domain.PriceRow{
		createTestPriceRow("2024-01-01", "GP", 325, 320),
	}))

	// Against an existing row
	err := store.InsertBulk(ctx, []domain.PriceRow{
		createTestPriceRow("2024-01-01", "GP", 326, 320),
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Within one batch
	err = store.InsertBulk(ctx, []domain.PriceRow{
		createTestPriceRow("2024-01-02", "GP", 330, 325),
		createTestPriceRow("2024-01-02", "GP", 331, 325),
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPriceRowStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceRowStore(conn)

	err := store.InsertBulk(ctx, []domain.PriceRow{{InstrumentID: "GP"}})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertBulk(ctx, []domain.PriceRow{createTestPriceRow("01/01/2024", "GP", 325, 320)})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetByDateRange(ctx, "not-a-date", "2024-01-31")
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	require.NoError(t, store.InsertBulk(ctx, nil))
}

func TestPriceRowStore_GetByInstrument(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceRowStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []domain.PriceRow{
		createTestPriceRow("2024-01-03", "GP", 332, 330),
		createTestPriceRow("2024-01-01", "GP", 325, 320),
		createTestPriceRow("2024-01-01", "ROBI", 30, 29),
	}))

	got, err := store.GetByInstrument(ctx, "GP", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)

	got, err = store.GetByInstrument(ctx, "GP", "2024-01-02", "2024-01-02")
	require.NoError(t, err)
	assert.Empty(t, got)
}
