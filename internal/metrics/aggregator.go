package metrics

import (
	"context"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage"
)

// Aggregator runs the pure aggregation functions over rows loaded from a
// PriceRowStore. Every method is a pure function of the stored rows for
// the requested range; the Aggregator itself holds no state between calls
// beyond its configuration.
type Aggregator struct {
	store        storage.PriceRowStore
	constituents domain.ConstituentSet // restricted-list index membership
}

// NewAggregator creates an aggregator over the given store. The
// constituent set configures the restricted-list index (DS30) and may be
// empty, in which case that index resolves to no rows.
func NewAggregator(store storage.PriceRowStore, constituents domain.ConstituentSet) *Aggregator {
	return &Aggregator{store: store, constituents: constituents}
}

// scope restricts loaded rows to an index before any aggregation. The
// whole-market and restricted-list paths share every rule downstream of
// this cut.
func (a *Aggregator) scope(rows []domain.PriceRow, index string) []domain.PriceRow {
	if index == "" {
		index = domain.IndexDSEX
	}
	return Resolve(rows, domain.IndexSelector(index), a.constituents)
}

// MarketDaily returns the per-date market aggregate for [start, end],
// scoped to the named index ("DSEX" or "DS30"; empty means full market).
func (a *Aggregator) MarketDaily(ctx context.Context, start, end, index string) ([]domain.DailyGroupMetrics, error) {
	rows, err := a.store.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return AggregateDaily(a.scope(rows, index)), nil
}

// MarketPeriod returns the period summary for [start, end] scoped to the
// named index.
func (a *Aggregator) MarketPeriod(ctx context.Context, start, end, index string) (domain.PeriodSummary, error) {
	daily, err := a.MarketDaily(ctx, start, end, index)
	if err != nil {
		return domain.PeriodSummary{}, err
	}
	return SummarizePeriod(daily), nil
}

// GroupedDaily returns the per-date, per-group aggregate for the given
// dimension (sector or category), scoped to the named index.
func (a *Aggregator) GroupedDaily(ctx context.Context, start, end, index string, dim domain.GroupDimension) ([]domain.DailyGroupMetrics, error) {
	rows, err := a.store.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return AggregateDailyGrouped(a.scope(rows, index), dim), nil
}

// GroupedPeriod returns one period summary per group for the given
// dimension, scoped to the named index.
func (a *Aggregator) GroupedPeriod(ctx context.Context, start, end, index string, dim domain.GroupDimension) ([]domain.PeriodSummary, error) {
	daily, err := a.GroupedDaily(ctx, start, end, index, dim)
	if err != nil {
		return nil, err
	}
	return SummarizePeriodGrouped(daily), nil
}

// StockTimeline builds the relative/liquidity timeline for one instrument
// against the selected benchmark.
func (a *Aggregator) StockTimeline(ctx context.Context, start, end, instrumentID string, sel domain.BenchmarkSelector) ([]domain.StockTimelineRow, error) {
	rows, err := a.store.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return BuildStockTimeline(rows, instrumentID, sel, a.constituents), nil
}

// Compare computes the period records for a target and a benchmark entity
// under identical rules, plus their deltas.
func (a *Aggregator) Compare(ctx context.Context, start, end string, target, bench domain.BenchmarkSelector) (domain.ComparisonStats, domain.ComparisonStats, domain.RelativeMetrics, error) {
	rows, err := a.store.GetByDateRange(ctx, start, end)
	if err != nil {
		return domain.ComparisonStats{}, domain.ComparisonStats{}, domain.RelativeMetrics{}, err
	}
	targetStats := ComparePeriod(rows, target, a.constituents)
	benchStats := ComparePeriod(rows, bench, a.constituents)
	return targetStats, benchStats, Relative(targetStats, benchStats), nil
}
