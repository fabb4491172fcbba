package pipeline

import (
	"context"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

// LoadFixtures populates a store with a small synthetic trading week for
// demonstration runs and tests. Five sessions, a mix of DS30 and
// non-DS30 names across three sectors and two categories.
func LoadFixtures(ctx context.Context, store storage.PriceRowStore) error {
	return store.InsertBulk(ctx, FixtureRows())
}

// FixtureRows returns the synthetic trading week.
func FixtureRows() []domain.PriceRow {
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-07"}

	type instrument struct {
		code     string
		sector   string
		category string
		start    float64 // closing price before the week
		moves    [5]float64
		value    float64
		volume   float64
	}

	instruments := []instrument{
		{"GP", "Telecom", "A", 320, [5]float64{5, 3, -2, 4, 1}, 120, 5000},
		{"ROBI", "Telecom", "A", 29, [5]float64{0.5, -0.2, 0.3, 0, 0.4}, 40, 12000},
		{"BRACBANK", "Bank", "A", 40, [5]float64{1, -1, 0.5, 0.5, -0.5}, 60, 9000},
		{"CITYBANK", "Bank", "A", 22, [5]float64{-0.2, 0.4, 0.1, -0.3, 0.2}, 25, 7000},
		{"SQURPHARMA", "Pharma", "A", 208, [5]float64{2, 2, -1, 3, -2}, 80, 3000},
		{"BXPHARMA", "Pharma", "B", 94, [5]float64{-1, 2, 1, -2, 1}, 30, 2000},
		{"JUTESPINN", "Jute", "B", 55, [5]float64{3, -3, 2, -2, 1}, 5, 400},
	}

	var rows []domain.PriceRow
	for _, ins := range instruments {
		prev := ins.start
		for i, date := range dates {
			last := prev + ins.moves[i]
			rows = append(rows, domain.PriceRow{
				Date:          date,
				InstrumentID:  ins.code,
				LastPrice:     last,
				PreviousClose: prev,
				TradedValue:   ins.value,
				TradedVolume:  ins.volume,
				TradeCount:    int(ins.volume / 100),
				Sector:        ins.sector,
				Category:      ins.category,
				Open:          prev,
				High:          maxf(prev, last),
				Low:           minf(prev, last),
				Close:         last,
			})
			prev = last
		}
	}
	return rows
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
