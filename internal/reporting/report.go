package reporting

import (
	"time"

	"dsex-insights/internal/domain"
)

// Report represents the market insights report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	IndexName   string
	StartDate   string
	EndDate     string
	TradingDays int

	// Market-wide summary over the queried range
	Market      domain.PeriodSummary
	MarketDaily []domain.DailyGroupMetrics

	// Per-group summaries (sorted by group key)
	Sectors    []domain.PeriodSummary
	Categories []domain.PeriodSummary

	// Optional target-versus-benchmark section
	Comparison *ComparisonSection
}

// ComparisonSection holds one target/benchmark pairing with its deltas.
type ComparisonSection struct {
	Target    domain.ComparisonStats
	Benchmark domain.ComparisonStats
	Relative  domain.RelativeMetrics
	Verdict   string
}
