package metrics

import (
	"sort"

	"dsex-insights/internal/domain"
)

// AggregateDaily reduces price rows to one DailyGroupMetrics per date for
// the whole row set. Rows failing the return-computation precondition are
// excluded first; an empty input yields an empty (non-nil error-free)
// result. Output is sorted by date ascending.
func AggregateDaily(rows []domain.PriceRow) []domain.DailyGroupMetrics {
	clean := FilterRows(rows)
	if len(clean) == 0 {
		return nil
	}

	byDate := make(map[string][]domain.PriceRow)
	for _, r := range clean {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := make([]domain.DailyGroupMetrics, 0, len(byDate))
	for date, dayRows := range byDate {
		m := reduceGroupDay(dayRows)
		m.Date = date
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// AggregateDailyGrouped reduces price rows to one DailyGroupMetrics per
// (date, group) pair for the given dimension, then fills ValueSharePct
// from each date's all-groups total in a second pass. Output is sorted by
// date, then group key.
func AggregateDailyGrouped(rows []domain.PriceRow, dim domain.GroupDimension) []domain.DailyGroupMetrics {
	clean := FilterRows(rows)
	if len(clean) == 0 {
		return nil
	}

	type groupKey struct {
		date  string
		group string
	}
	byGroup := make(map[groupKey][]domain.PriceRow)
	for _, r := range clean {
		k := groupKey{date: r.Date, group: r.GroupValue(dim)}
		byGroup[k] = append(byGroup[k], r)
	}

	out := make([]domain.DailyGroupMetrics, 0, len(byGroup))
	for k, groupRows := range byGroup {
		m := reduceGroupDay(groupRows)
		m.Date = k.date
		m.GroupKey = k.group
		out = append(out, m)
	}

	// Second pass: value share against the same-day total across groups.
	dateTotals := make(map[string]float64)
	for _, m := range out {
		dateTotals[m.Date] += m.TotalValue
	}
	for i := range out {
		if total := dateTotals[out[i].Date]; total > 0 {
			out[i].ValueSharePct = out[i].TotalValue / total * 100
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].GroupKey < out[j].GroupKey
	})
	return out
}

// reduceGroupDay collapses the rows of one date (or one date+group) into a
// single metrics row. Rows are assumed pre-filtered.
func reduceGroupDay(rows []domain.PriceRow) domain.DailyGroupMetrics {
	var (
		totalValue  float64
		totalVolume float64
		advancers   int
	)
	instruments := make(map[string]struct{}, len(rows))
	returns := make([]float64, 0, len(rows))

	for _, r := range rows {
		ret := dailyReturn(r.LastPrice, r.PreviousClose)
		returns = append(returns, ret)
		totalValue += r.TradedValue
		totalVolume += r.TradedVolume
		instruments[r.InstrumentID] = struct{}{}
		if ret > 0 {
			advancers++
		}
	}

	count := len(instruments)
	mean := computeMean(returns)

	breadth := 0.0
	if count > 0 {
		breadth = float64(advancers) / float64(count) * 100
	}

	return domain.DailyGroupMetrics{
		TotalValue:          totalValue,
		TotalVolume:         totalVolume,
		MeanReturnPct:       mean * 100,
		BreadthPct:          breadth,
		ReturnDispersionPct: computeStddev(returns, mean) * 100,
		ConstituentCount:    count,
	}
}
