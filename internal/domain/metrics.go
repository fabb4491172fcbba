package domain

// DailyGroupMetrics is one aggregated row per date, or per date and group
// key when a secondary dimension is in play. All percentage columns are in
// percent units (2.5 means 2.5%).
type DailyGroupMetrics struct {
	Date                string  `json:"date"`
	GroupKey            string  `json:"group_key,omitempty"` // sector/category value, empty for whole market
	TotalValue          float64 `json:"total_value"`
	TotalVolume         float64 `json:"total_volume"`
	MeanReturnPct       float64 `json:"mean_return_pct"`
	BreadthPct          float64 `json:"breadth_pct"`            // share of constituents with positive return
	ReturnDispersionPct float64 `json:"return_dispersion_pct"`  // sample stddev of constituent returns, 0 below 2 constituents
	ConstituentCount    int     `json:"constituent_count"`      // distinct instruments after filtering
	ValueSharePct       float64 `json:"value_share_pct,omitempty"` // grouped output only
}

// PeriodSummary reduces a daily series to one row per group over the whole
// queried range.
//
// CompoundedReturnPct is NaN when any daily compounding factor
// (1 + mean_return/100) is non-positive; a NaN period return means
// "undefined", never 0%.
type PeriodSummary struct {
	GroupKey            string  `json:"group_key,omitempty"`
	CompoundedReturnPct float64 `json:"compounded_return_pct"`
	PeriodVolatilityPct float64 `json:"period_volatility_pct"` // sample stddev of daily mean returns
	AvgTotalValue       float64 `json:"avg_total_value"`
	AvgTotalVolume      float64 `json:"avg_total_volume"`
	AvgBreadthPct       float64 `json:"avg_breadth_pct"`
	AvgValueSharePct    float64 `json:"avg_value_share_pct,omitempty"` // grouped output only
	TradingDays         int     `json:"trading_days"`
}

// StockTimelineRow is one date of the target-versus-benchmark timeline.
// Benchmark columns are nil on dates where the benchmark subset has no
// rows; a missing benchmark day is a gap, not a zero return.
type StockTimelineRow struct {
	Date                        string   `json:"date"`
	DailyReturnPct              float64  `json:"daily_return_pct"`
	BenchmarkReturnPct          *float64 `json:"benchmark_return_pct"`
	TradedValue                 float64  `json:"traded_value"`
	BenchmarkTradedValue        *float64 `json:"benchmark_traded_value"`
	LiquiditySharePct           float64  `json:"liquidity_share_pct"` // vs whole-market value that day
	ExcessReturnPct             *float64 `json:"excess_return_pct"`   // nil whenever the benchmark return is missing
	ParticipationIndex          float64  `json:"participation_index"` // day value / own period-average value
	BenchmarkParticipationIndex *float64 `json:"benchmark_participation_index"`

	// Price overlay, straight from the row's optional OHLC columns.
	LastPrice float64 `json:"last_price"`
	Open      float64 `json:"open,omitempty"`
	High      float64 `json:"high,omitempty"`
	Low       float64 `json:"low,omitempty"`
	Close     float64 `json:"close,omitempty"`
}

// ComparisonStats is the uniform period record for any comparable entity:
// a stock, an index, a sector, or a category. Stocks and benchmarks are
// computed under identical filter and compounding rules so their delta is
// meaningful.
type ComparisonStats struct {
	EntityLabel         string  `json:"entity_label"`
	CompoundedReturnPct float64 `json:"compounded_return_pct"` // NaN when compounding is undefined
	PeriodVolatilityPct float64 `json:"period_volatility_pct"`
	PositiveDaysPct     float64 `json:"positive_days_pct"`
	AvgDailyTradedValue float64 `json:"avg_daily_traded_value"`
	TotalTradedVolume   float64 `json:"total_traded_volume"`
	TradingDays         int     `json:"trading_days"`
}

// RelativeMetrics is the target-minus-benchmark delta shown by the
// comparison verdict.
type RelativeMetrics struct {
	RelativeReturnPct float64 `json:"relative_return_pct"`
	VolatilityGapPct  float64 `json:"volatility_gap_pct"`
	BreadthLeadPct    float64 `json:"breadth_lead_pct"` // positive-days share delta
}
