package metrics

import (
	"testing"

	"dsex-insights/internal/domain"
)

func TestResolve_Instrument(t *testing.T) {
	rows := twoDayRows()
	got := Resolve(rows, domain.InstrumentSelector("A"), nil)

	if len(got) != 2 {
		t.Fatalf("expected 2 rows for instrument A, got %d", len(got))
	}
	for _, r := range got {
		if r.InstrumentID != "A" {
			t.Errorf("unexpected row for instrument %s", r.InstrumentID)
		}
	}
}

func TestResolve_Sector(t *testing.T) {
	rows := twoDayRows()
	got := Resolve(rows, domain.SectorSelector("Pharma"), nil)

	if len(got) != 2 {
		t.Fatalf("expected 2 rows for sector Pharma, got %d", len(got))
	}
	for _, r := range got {
		if r.Sector != "Pharma" {
			t.Errorf("unexpected row from sector %s", r.Sector)
		}
	}
}

func TestResolve_Category(t *testing.T) {
	rows := twoDayRows()
	got := Resolve(rows, domain.CategorySelector("B"), nil)
	for _, r := range got {
		if r.Category != "B" {
			t.Errorf("unexpected row from category %s", r.Category)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 rows for category B, got %d", len(got))
	}
}

func TestResolve_FullMarketIndex(t *testing.T) {
	rows := twoDayRows()
	got := Resolve(rows, domain.IndexSelector(domain.IndexDSEX), nil)
	if len(got) != len(rows) {
		t.Errorf("full-market index must return all rows: expected %d, got %d", len(rows), len(got))
	}
}

func TestResolve_RestrictedIndexUsesConfiguredSet(t *testing.T) {
	rows := twoDayRows()
	constituents := domain.NewConstituentSet([]string{"B"})

	got := Resolve(rows, domain.IndexSelector(domain.IndexDS30), constituents)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for restricted index, got %d", len(got))
	}
	for _, r := range got {
		if r.InstrumentID != "B" {
			t.Errorf("restricted index leaked instrument %s", r.InstrumentID)
		}
	}

	// No configured set means the restricted index denotes nothing.
	if got := Resolve(rows, domain.IndexSelector(domain.IndexDS30), nil); len(got) != 0 {
		t.Errorf("expected empty subset without constituents, got %d rows", len(got))
	}
}

func TestResolve_NoMatchIsEmptyNotError(t *testing.T) {
	rows := twoDayRows()
	if got := Resolve(rows, domain.SectorSelector("Jute"), nil); len(got) != 0 {
		t.Errorf("expected empty subset for unknown sector, got %d rows", len(got))
	}
	if got := Resolve(rows, domain.InstrumentSelector("NOPE"), nil); len(got) != 0 {
		t.Errorf("expected empty subset for unknown instrument, got %d rows", len(got))
	}
}

func TestParseSelector(t *testing.T) {
	cases := []struct {
		label string
		want  domain.BenchmarkSelector
	}{
		{"DSEX", domain.IndexSelector("DSEX")},
		{"DS30", domain.IndexSelector("DS30")},
		{"Sector: Bank", domain.SectorSelector("Bank")},
		{"Category: A", domain.CategorySelector("A")},
		{"Stock: GP", domain.InstrumentSelector("GP")},
		{"stock: GP", domain.InstrumentSelector("GP")},
	}
	for _, c := range cases {
		if got := domain.ParseSelector(c.label); got != c.want {
			t.Errorf("ParseSelector(%q) = %+v, want %+v", c.label, got, c.want)
		}
	}
}
