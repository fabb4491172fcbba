package metrics

import "dsex-insights/internal/domain"

// Resolve maps a benchmark selector to the subset of rows it denotes.
// The restricted-list constituent set arrives as configuration; the
// resolver carries no compiled-in symbol list. An unmatched selector
// resolves to an empty subset, never an error; callers return zeroed
// stats for empty subsets.
func Resolve(rows []domain.PriceRow, sel domain.BenchmarkSelector, constituents domain.ConstituentSet) []domain.PriceRow {
	switch sel.Type {
	case domain.SelectorIndex:
		if sel.Name == domain.IndexDS30 {
			return filterRowsBy(rows, func(r *domain.PriceRow) bool {
				return constituents.Contains(r.InstrumentID)
			})
		}
		// Any other index name means the full market.
		return rows
	case domain.SelectorSector:
		return filterRowsBy(rows, func(r *domain.PriceRow) bool { return r.Sector == sel.Name })
	case domain.SelectorCategory:
		return filterRowsBy(rows, func(r *domain.PriceRow) bool { return r.Category == sel.Name })
	case domain.SelectorInstrument:
		return filterRowsBy(rows, func(r *domain.PriceRow) bool { return r.InstrumentID == sel.Name })
	}
	return nil
}

func filterRowsBy(rows []domain.PriceRow, keep func(*domain.PriceRow) bool) []domain.PriceRow {
	var out []domain.PriceRow
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
