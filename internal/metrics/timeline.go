package metrics

import (
	"sort"

	"dsex-insights/internal/domain"
)

// benchDay is the benchmark subset collapsed to one date.
type benchDay struct {
	meanReturnPct float64
	tradedValue   float64
}

// BuildStockTimeline joins one instrument's daily series against the
// whole-market and benchmark daily series, producing the relative and
// liquidity timeline. Dates where the target traded but the benchmark has
// no rows carry nil benchmark columns; a gap is not a zero return.
// A target with no rows at all yields an empty timeline.
func BuildStockTimeline(rows []domain.PriceRow, instrumentID string, sel domain.BenchmarkSelector, constituents domain.ConstituentSet) []domain.StockTimelineRow {
	clean := FilterRows(rows)

	// Target series, sorted by date.
	var target []domain.PriceRow
	for _, r := range clean {
		if r.InstrumentID == instrumentID {
			target = append(target, r)
		}
	}
	if len(target) == 0 {
		return nil
	}
	sort.Slice(target, func(i, j int) bool { return target[i].Date < target[j].Date })

	// Whole-market daily value, the liquidity-share denominator.
	marketValue := make(map[string]float64)
	for _, r := range clean {
		marketValue[r.Date] += r.TradedValue
	}

	// Benchmark daily series and its period-average value.
	bench := aggregateBenchmark(Resolve(clean, sel, constituents))
	benchAvgValue := 0.0
	if len(bench) > 0 {
		sum := 0.0
		for _, b := range bench {
			sum += b.tradedValue
		}
		benchAvgValue = sum / float64(len(bench))
	}

	// Target period-average value, the participation-index denominator.
	targetAvgValue := 0.0
	for _, r := range target {
		targetAvgValue += r.TradedValue
	}
	targetAvgValue /= float64(len(target))

	timeline := make([]domain.StockTimelineRow, 0, len(target))
	for _, r := range target {
		ret := dailyReturn(r.LastPrice, r.PreviousClose) * 100

		row := domain.StockTimelineRow{
			Date:           r.Date,
			DailyReturnPct: ret,
			TradedValue:    r.TradedValue,
			LastPrice:      r.LastPrice,
			Open:           r.Open,
			High:           r.High,
			Low:            r.Low,
			Close:          r.Close,
		}

		if mkt := marketValue[r.Date]; mkt > 0 {
			row.LiquiditySharePct = r.TradedValue / mkt * 100
		}
		if targetAvgValue > 0 {
			row.ParticipationIndex = r.TradedValue / targetAvgValue
		}

		// Left join on the benchmark series: missing days stay nil.
		if b, ok := bench[r.Date]; ok {
			benchRet := b.meanReturnPct
			benchVal := b.tradedValue
			excess := ret - benchRet
			row.BenchmarkReturnPct = &benchRet
			row.BenchmarkTradedValue = &benchVal
			row.ExcessReturnPct = &excess

			part := 0.0
			if benchAvgValue > 0 {
				part = benchVal / benchAvgValue
			}
			row.BenchmarkParticipationIndex = &part
		}

		timeline = append(timeline, row)
	}
	return timeline
}

// aggregateBenchmark collapses pre-filtered benchmark rows into per-date
// mean return (percent) and total traded value.
func aggregateBenchmark(rows []domain.PriceRow) map[string]benchDay {
	byDate := make(map[string][]domain.PriceRow)
	for _, r := range rows {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := make(map[string]benchDay, len(byDate))
	for date, dayRows := range byDate {
		returns := make([]float64, 0, len(dayRows))
		value := 0.0
		for _, r := range dayRows {
			returns = append(returns, dailyReturn(r.LastPrice, r.PreviousClose))
			value += r.TradedValue
		}
		out[date] = benchDay{
			meanReturnPct: computeMean(returns) * 100,
			tradedValue:   value,
		}
	}
	return out
}
