package metrics

import (
	"context"
	"testing"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/storage/memory"
)

func storeWith(t *testing.T, rows []domain.PriceRow) *memory.PriceRowStore {
	t.Helper()
	store := memory.NewPriceRowStore()
	if err := store.InsertBulk(context.Background(), rows); err != nil {
		t.Fatalf("fixture insert failed: %v", err)
	}
	return store
}

func TestAggregator_MarketDailyAndPeriod(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(storeWith(t, twoDayRows()), nil)

	daily, err := agg.MarketDaily(ctx, "2024-01-01", "2024-01-02", "")
	if err != nil {
		t.Fatalf("MarketDaily failed: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(daily))
	}

	period, err := agg.MarketPeriod(ctx, "2024-01-01", "2024-01-02", domain.IndexDSEX)
	if err != nil {
		t.Fatalf("MarketPeriod failed: %v", err)
	}
	if period.TradingDays != 2 {
		t.Errorf("expected 2 trading days, got %d", period.TradingDays)
	}
}

func TestAggregator_RestrictedIndexScope(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(storeWith(t, twoDayRows()), domain.NewConstituentSet([]string{"A"}))

	daily, err := agg.MarketDaily(ctx, "2024-01-01", "2024-01-02", domain.IndexDS30)
	if err != nil {
		t.Fatalf("MarketDaily failed: %v", err)
	}
	for _, d := range daily {
		if d.ConstituentCount != 1 {
			t.Errorf("restricted scope must see instrument A only, got count %d on %s", d.ConstituentCount, d.Date)
		}
	}
	// Day1 under DS30 is A alone: +10%.
	if !almostEqual(daily[0].MeanReturnPct, 10, 1e-9) {
		t.Errorf("DS30 day1 return: expected 10, got %f", daily[0].MeanReturnPct)
	}
}

func TestAggregator_GroupedPeriod(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(storeWith(t, twoDayRows()), nil)

	summaries, err := agg.GroupedPeriod(ctx, "2024-01-01", "2024-01-02", "", domain.DimensionSector)
	if err != nil {
		t.Fatalf("GroupedPeriod failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sector summaries, got %d", len(summaries))
	}
}

func TestAggregator_CompareAndTimeline(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(storeWith(t, twoDayRows()), nil)

	target, bench, rel, err := agg.Compare(ctx, "2024-01-01", "2024-01-02",
		domain.InstrumentSelector("A"), domain.IndexSelector(domain.IndexDSEX))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if target.EntityLabel != "A" || bench.EntityLabel != domain.IndexDSEX {
		t.Errorf("labels: got %s vs %s", target.EntityLabel, bench.EntityLabel)
	}
	if !almostEqual(rel.RelativeReturnPct, target.CompoundedReturnPct-bench.CompoundedReturnPct, 1e-12) {
		t.Error("relative return does not match the stat delta")
	}

	timeline, err := agg.StockTimeline(ctx, "2024-01-01", "2024-01-02", "A", domain.InstrumentSelector("B"))
	if err != nil {
		t.Fatalf("StockTimeline failed: %v", err)
	}
	if len(timeline) != 2 {
		t.Errorf("expected 2 timeline rows, got %d", len(timeline))
	}
}

func TestAggregator_EmptyRange(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(storeWith(t, twoDayRows()), nil)

	daily, err := agg.MarketDaily(ctx, "2030-01-01", "2030-12-31", "")
	if err != nil {
		t.Fatalf("MarketDaily failed: %v", err)
	}
	if len(daily) != 0 {
		t.Errorf("expected no rows outside the stored range, got %d", len(daily))
	}

	period, err := agg.MarketPeriod(ctx, "2030-01-01", "2030-12-31", "")
	if err != nil {
		t.Fatalf("MarketPeriod failed: %v", err)
	}
	if period.TradingDays != 0 {
		t.Errorf("expected zero summary, got %+v", period)
	}
}
