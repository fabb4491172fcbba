package metrics

import (
	"sort"

	"dsex-insights/internal/domain"
)

// SummarizePeriod reduces a whole-market daily series to one summary over
// the full range. The return figure compounds geometrically; value,
// volume, and breadth average arithmetically since they do not compound.
// An empty series yields the zero summary (TradingDays 0).
func SummarizePeriod(daily []domain.DailyGroupMetrics) domain.PeriodSummary {
	return summarize(daily)
}

// SummarizePeriodGrouped reduces a grouped daily series to one summary per
// group key, sorted by group key.
func SummarizePeriodGrouped(daily []domain.DailyGroupMetrics) []domain.PeriodSummary {
	if len(daily) == 0 {
		return nil
	}

	byGroup := make(map[string][]domain.DailyGroupMetrics)
	for _, m := range daily {
		byGroup[m.GroupKey] = append(byGroup[m.GroupKey], m)
	}

	out := make([]domain.PeriodSummary, 0, len(byGroup))
	for group, series := range byGroup {
		s := summarize(series)
		s.GroupKey = group
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GroupKey < out[j].GroupKey })
	return out
}

func summarize(daily []domain.DailyGroupMetrics) domain.PeriodSummary {
	n := len(daily)
	if n == 0 {
		return domain.PeriodSummary{}
	}

	returns := make([]float64, n)
	values := make([]float64, n)
	volumes := make([]float64, n)
	breadths := make([]float64, n)
	shares := make([]float64, n)
	for i, m := range daily {
		returns[i] = m.MeanReturnPct
		values[i] = m.TotalValue
		volumes[i] = m.TotalVolume
		breadths[i] = m.BreadthPct
		shares[i] = m.ValueSharePct
	}

	return domain.PeriodSummary{
		CompoundedReturnPct: compoundedReturnPct(returns),
		PeriodVolatilityPct: computeStddev(returns, computeMean(returns)),
		AvgTotalValue:       computeMean(values),
		AvgTotalVolume:      computeMean(volumes),
		AvgBreadthPct:       computeMean(breadths),
		AvgValueSharePct:    computeMean(shares),
		TradingDays:         n,
	}
}
