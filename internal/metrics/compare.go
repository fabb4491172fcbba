package metrics

import "dsex-insights/internal/domain"

// ComparePeriod produces the uniform period record for any entity a
// selector can denote. It routes through the same FilterRows +
// AggregateDaily + compounding code as the whole-market path, so a
// stock's stats and its benchmark's stats obey identical rules. That is
// the precondition for a meaningful relative-performance verdict.
//
// An empty resolved subset, or one emptied by filtering, yields zeroed
// stats with the entity label preserved.
func ComparePeriod(rows []domain.PriceRow, sel domain.BenchmarkSelector, constituents domain.ConstituentSet) domain.ComparisonStats {
	stats := domain.ComparisonStats{EntityLabel: sel.Name}

	subset := Resolve(FilterRows(rows), sel, constituents)
	daily := AggregateDaily(subset)
	if len(daily) == 0 {
		return stats
	}

	returns := make([]float64, len(daily))
	values := make([]float64, len(daily))
	positiveDays := 0
	for i, d := range daily {
		returns[i] = d.MeanReturnPct
		values[i] = d.TotalValue
		if d.MeanReturnPct > 0 {
			positiveDays++
		}
	}

	totalVolume := 0.0
	for _, r := range subset {
		totalVolume += r.TradedVolume
	}

	stats.CompoundedReturnPct = compoundedReturnPct(returns)
	stats.PeriodVolatilityPct = computeStddev(returns, computeMean(returns))
	stats.PositiveDaysPct = float64(positiveDays) / float64(len(daily)) * 100
	stats.AvgDailyTradedValue = computeMean(values)
	stats.TotalTradedVolume = totalVolume
	stats.TradingDays = len(daily)
	return stats
}

// Relative computes the target-minus-benchmark deltas behind the
// outperform/underperform verdict. NaN compounded returns propagate into
// the relative return, keeping "undefined" visible to the caller.
func Relative(target, bench domain.ComparisonStats) domain.RelativeMetrics {
	return domain.RelativeMetrics{
		RelativeReturnPct: target.CompoundedReturnPct - bench.CompoundedReturnPct,
		VolatilityGapPct:  target.PeriodVolatilityPct - bench.PeriodVolatilityPct,
		BreadthLeadPct:    target.PositiveDaysPct - bench.PositiveDaysPct,
	}
}
