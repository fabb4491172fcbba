package metrics

import (
	"testing"

	"dsex-insights/internal/domain"
)

// timelineRows: target GP trades 3 days; peer BX trades only the first 2.
func timelineRows() []domain.PriceRow {
	return []domain.PriceRow{
		{Date: "2024-01-01", InstrumentID: "GP", LastPrice: 102, PreviousClose: 100, TradedValue: 20, Sector: "Telecom"},
		{Date: "2024-01-01", InstrumentID: "BX", LastPrice: 55, PreviousClose: 50, TradedValue: 80, Sector: "Pharma"},
		{Date: "2024-01-02", InstrumentID: "GP", LastPrice: 101, PreviousClose: 102, TradedValue: 30, Sector: "Telecom"},
		{Date: "2024-01-02", InstrumentID: "BX", LastPrice: 54, PreviousClose: 55, TradedValue: 70, Sector: "Pharma"},
		{Date: "2024-01-03", InstrumentID: "GP", LastPrice: 104, PreviousClose: 101, TradedValue: 40, Sector: "Telecom"},
	}
}

func TestBuildStockTimeline_Basic(t *testing.T) {
	timeline := BuildStockTimeline(timelineRows(), "GP", domain.InstrumentSelector("BX"), nil)
	if len(timeline) != 3 {
		t.Fatalf("expected 3 timeline rows, got %d", len(timeline))
	}

	day1 := timeline[0]
	if !almostEqual(day1.DailyReturnPct, 2.0, 1e-9) {
		t.Errorf("day1 return: expected 2.0, got %f", day1.DailyReturnPct)
	}
	// Liquidity share: 20 of (20+80).
	if !almostEqual(day1.LiquiditySharePct, 20, 1e-9) {
		t.Errorf("day1 liquidity share: expected 20, got %f", day1.LiquiditySharePct)
	}
	// Participation: 20 / mean(20,30,40).
	if !almostEqual(day1.ParticipationIndex, 20.0/30, 1e-9) {
		t.Errorf("day1 participation: expected %f, got %f", 20.0/30, day1.ParticipationIndex)
	}

	if day1.BenchmarkReturnPct == nil {
		t.Fatal("day1 benchmark return missing, benchmark traded that day")
	}
	if !almostEqual(*day1.BenchmarkReturnPct, 10, 1e-9) {
		t.Errorf("day1 benchmark return: expected 10, got %f", *day1.BenchmarkReturnPct)
	}
	if day1.ExcessReturnPct == nil || !almostEqual(*day1.ExcessReturnPct, 2.0-10, 1e-9) {
		t.Errorf("day1 excess return: expected -8, got %v", day1.ExcessReturnPct)
	}
	if day1.BenchmarkParticipationIndex == nil || !almostEqual(*day1.BenchmarkParticipationIndex, 80.0/75, 1e-9) {
		t.Errorf("day1 benchmark participation: expected %f, got %v", 80.0/75, day1.BenchmarkParticipationIndex)
	}
}

func TestBuildStockTimeline_MissingBenchmarkDayIsGap(t *testing.T) {
	timeline := BuildStockTimeline(timelineRows(), "GP", domain.InstrumentSelector("BX"), nil)

	day3 := timeline[2]
	if day3.Date != "2024-01-03" {
		t.Fatalf("expected day3 2024-01-03, got %s", day3.Date)
	}
	// BX did not trade on day3: benchmark columns are gaps, never zeros.
	if day3.BenchmarkReturnPct != nil {
		t.Errorf("expected nil benchmark return on missing day, got %f", *day3.BenchmarkReturnPct)
	}
	if day3.ExcessReturnPct != nil {
		t.Errorf("excess return must be missing when benchmark is, got %f", *day3.ExcessReturnPct)
	}
	if day3.BenchmarkTradedValue != nil || day3.BenchmarkParticipationIndex != nil {
		t.Error("benchmark value columns must be nil on a missing day")
	}

	// The target's own columns stay populated.
	if !almostEqual(day3.DailyReturnPct, 3.0/101*100, 1e-9) {
		t.Errorf("day3 return: expected %f, got %f", 3.0/101*100, day3.DailyReturnPct)
	}
	if !almostEqual(day3.LiquiditySharePct, 100, 1e-9) {
		t.Errorf("day3 liquidity share: GP is the whole market, expected 100, got %f", day3.LiquiditySharePct)
	}
}

func TestBuildStockTimeline_SectorBenchmark(t *testing.T) {
	// Benchmarking against the target's own sector includes the target.
	timeline := BuildStockTimeline(timelineRows(), "GP", domain.SectorSelector("Telecom"), nil)
	day1 := timeline[0]
	if day1.BenchmarkReturnPct == nil || !almostEqual(*day1.BenchmarkReturnPct, 2.0, 1e-9) {
		t.Errorf("sector-of-one benchmark must equal the target return, got %v", day1.BenchmarkReturnPct)
	}
	if day1.ExcessReturnPct == nil || !almostEqual(*day1.ExcessReturnPct, 0, 1e-9) {
		t.Errorf("excess against own sector of one: expected 0, got %v", day1.ExcessReturnPct)
	}
}

func TestBuildStockTimeline_NoTargetRows(t *testing.T) {
	timeline := BuildStockTimeline(timelineRows(), "GHOST", domain.IndexSelector(domain.IndexDSEX), nil)
	if len(timeline) != 0 {
		t.Errorf("expected empty timeline for unknown instrument, got %d rows", len(timeline))
	}
}

func TestBuildStockTimeline_FilteredTargetRows(t *testing.T) {
	// The target's poison day (zero previous close) disappears from the
	// timeline rather than producing an infinite return.
	rows := append(timelineRows(), domain.PriceRow{
		Date: "2024-01-04", InstrumentID: "GP", LastPrice: 99, PreviousClose: 0, TradedValue: 10,
	})
	timeline := BuildStockTimeline(rows, "GP", domain.IndexSelector(domain.IndexDSEX), nil)
	if len(timeline) != 3 {
		t.Errorf("expected poison day excluded, got %d rows", len(timeline))
	}
}
