package reporting

import (
	"context"
	"time"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/metrics"
	"dsex-insights/internal/observability"
)

// Generator produces reports from stored data.
type Generator struct {
	agg *metrics.Aggregator
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(agg *metrics.Aggregator) *Generator {
	return &Generator{
		agg: agg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete market report for [start, end] scoped to
// the named index. When both target and bench are non-nil, the report
// carries a comparison section.
func (g *Generator) Generate(ctx context.Context, start, end, index string, target, bench *domain.BenchmarkSelector) (*Report, error) {
	if index == "" {
		index = domain.IndexDSEX
	}

	daily, err := g.agg.MarketDaily(ctx, start, end, index)
	if err != nil {
		return nil, err
	}
	summary := metrics.SummarizePeriod(daily)

	sectors, err := g.agg.GroupedPeriod(ctx, start, end, index, domain.DimensionSector)
	if err != nil {
		return nil, err
	}
	categories, err := g.agg.GroupedPeriod(ctx, start, end, index, domain.DimensionCategory)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		IndexName:   index,
		StartDate:   start,
		EndDate:     end,
		TradingDays: summary.TradingDays,
		Market:      summary,
		MarketDaily: daily,
		Sectors:     sectors,
		Categories:  categories,
	}

	if target != nil && bench != nil {
		targetStats, benchStats, rel, err := g.agg.Compare(ctx, start, end, *target, *bench)
		if err != nil {
			return nil, err
		}
		report.Comparison = &ComparisonSection{
			Target:    targetStats,
			Benchmark: benchStats,
			Relative:  rel,
			Verdict:   BuildVerdict(targetStats, benchStats, rel),
		}
	}

	observability.RecordReportGenerated()
	return report, nil
}
