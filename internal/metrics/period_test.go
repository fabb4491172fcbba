package metrics

import (
	"math"
	"testing"

	"dsex-insights/internal/domain"
)

func TestSummarizePeriod_TwoDayScenario(t *testing.T) {
	daily := AggregateDaily(twoDayRows())
	summary := SummarizePeriod(daily)

	// Geometric compounding must land strictly between the two daily
	// arithmetic values (2.5 and ~1.72).
	lo, hi := daily[1].MeanReturnPct, daily[0].MeanReturnPct
	if !(summary.CompoundedReturnPct > lo && summary.CompoundedReturnPct < hi) {
		t.Errorf("compounded return %f not strictly between %f and %f",
			summary.CompoundedReturnPct, lo, hi)
	}

	want := (math.Sqrt((1+daily[0].MeanReturnPct/100)*(1+daily[1].MeanReturnPct/100)) - 1) * 100
	if !almostEqual(summary.CompoundedReturnPct, want, 1e-9) {
		t.Errorf("compounded return: expected %f, got %f", want, summary.CompoundedReturnPct)
	}

	if summary.PeriodVolatilityPct <= 0 {
		t.Errorf("two differing days must give non-zero volatility, got %f", summary.PeriodVolatilityPct)
	}
	if !almostEqual(summary.AvgTotalValue, (80.0+100.0)/2, 1e-9) {
		t.Errorf("avg total value: expected 90, got %f", summary.AvgTotalValue)
	}
	if summary.TradingDays != 2 {
		t.Errorf("expected 2 trading days, got %d", summary.TradingDays)
	}
}

func TestSummarizePeriod_UndefinedCompounding(t *testing.T) {
	daily := []domain.DailyGroupMetrics{
		{Date: "2024-01-01", MeanReturnPct: 2.5},
		{Date: "2024-01-02", MeanReturnPct: -100}, // factor 0
		{Date: "2024-01-03", MeanReturnPct: 1.0},
	}
	summary := SummarizePeriod(daily)

	if !math.IsNaN(summary.CompoundedReturnPct) {
		t.Errorf("expected NaN sentinel, got %f", summary.CompoundedReturnPct)
	}
	// Volatility and the arithmetic averages stay defined.
	if math.IsNaN(summary.PeriodVolatilityPct) {
		t.Error("volatility must stay defined when compounding is undefined")
	}
}

func TestSummarizePeriod_Empty(t *testing.T) {
	summary := SummarizePeriod(nil)
	if summary.TradingDays != 0 || summary.CompoundedReturnPct != 0 {
		t.Errorf("expected zero summary for empty series, got %+v", summary)
	}
}

func TestSummarizePeriodGrouped(t *testing.T) {
	daily := AggregateDailyGrouped(twoDayRows(), domain.DimensionSector)
	summaries := SummarizePeriodGrouped(daily)

	if len(summaries) != 2 {
		t.Fatalf("expected 2 group summaries, got %d", len(summaries))
	}
	if summaries[0].GroupKey != "Bank" || summaries[1].GroupKey != "Pharma" {
		t.Errorf("expected sorted group keys Bank, Pharma; got %s, %s",
			summaries[0].GroupKey, summaries[1].GroupKey)
	}

	// Bank is instrument A alone: +10% then -1.818%; avg value share of
	// 50/80 and 40/100.
	bank := summaries[0]
	wantShare := (50.0/80*100 + 40.0/100*100) / 2
	if !almostEqual(bank.AvgValueSharePct, wantShare, 1e-9) {
		t.Errorf("bank avg value share: expected %f, got %f", wantShare, bank.AvgValueSharePct)
	}
	if bank.TradingDays != 2 {
		t.Errorf("bank trading days: expected 2, got %d", bank.TradingDays)
	}
}

func TestSummarizePeriodGrouped_Empty(t *testing.T) {
	if got := SummarizePeriodGrouped(nil); len(got) != 0 {
		t.Errorf("expected no summaries for empty series, got %d", len(got))
	}
}
