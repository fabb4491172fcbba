package metrics

import (
	"math"

	"dsex-insights/internal/domain"
)

// dailyReturn is the per-row fractional return on which every aggregate is
// built. Precondition: prevClose > 0; FilterRows drops violating rows
// before any caller reaches this point.
func dailyReturn(last, prevClose float64) float64 {
	return (last - prevClose) / prevClose
}

// FilterRows drops rows that must not participate in return computation:
// a non-positive or NaN previous close, or a missing last price (the feed
// marks no-trade rows with a zero last price). A stray zero reference
// price would otherwise corrupt every downstream average, so exclusion
// happens here, once, for all aggregation paths.
func FilterRows(rows []domain.PriceRow) []domain.PriceRow {
	filtered := make([]domain.PriceRow, 0, len(rows))
	for _, r := range rows {
		if !(r.PreviousClose > 0) { // also rejects NaN
			continue
		}
		if r.LastPrice == 0 || math.IsNaN(r.LastPrice) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
