package domain

import "strings"

// SelectorType enumerates the closed set of benchmark kinds.
type SelectorType string

const (
	SelectorIndex      SelectorType = "index"
	SelectorSector     SelectorType = "sector"
	SelectorCategory   SelectorType = "category"
	SelectorInstrument SelectorType = "stock"
)

// Index names understood by the resolver.
const (
	IndexDSEX = "DSEX" // full market
	IndexDS30 = "DS30" // blue-chip restricted list, supplied as configuration
)

// BenchmarkSelector denotes a subset of price rows: the full market, the
// restricted blue-chip index, one sector, one category, or a single peer
// instrument.
type BenchmarkSelector struct {
	Type SelectorType `json:"type"`
	Name string       `json:"name"`
}

// Convenience constructors.

func IndexSelector(name string) BenchmarkSelector {
	return BenchmarkSelector{Type: SelectorIndex, Name: name}
}

func SectorSelector(name string) BenchmarkSelector {
	return BenchmarkSelector{Type: SelectorSector, Name: name}
}

func CategorySelector(name string) BenchmarkSelector {
	return BenchmarkSelector{Type: SelectorCategory, Name: name}
}

func InstrumentSelector(id string) BenchmarkSelector {
	return BenchmarkSelector{Type: SelectorInstrument, Name: id}
}

// ParseSelector turns a presentation label into a structured selector.
// Labels are either a bare index name ("DSEX", "DS30") or a typed pair
// such as "Sector: Bank", "Category: A", "Stock: GP".
func ParseSelector(label string) BenchmarkSelector {
	label = strings.TrimSpace(label)
	if before, after, ok := strings.Cut(label, ":"); ok {
		name := strings.TrimSpace(after)
		switch strings.ToLower(strings.TrimSpace(before)) {
		case "sector":
			return SectorSelector(name)
		case "category":
			return CategorySelector(name)
		case "stock":
			return InstrumentSelector(name)
		case "index":
			return IndexSelector(name)
		}
	}
	return IndexSelector(label)
}

// ConstituentSet is a fixed set of instrument identifiers, used for the
// restricted-list index. The set is deployment configuration; nothing in
// the metrics core hardcodes its contents.
type ConstituentSet map[string]struct{}

// NewConstituentSet builds a set from a list of trading codes.
func NewConstituentSet(ids []string) ConstituentSet {
	set := make(ConstituentSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Contains reports membership. A nil set contains nothing.
func (s ConstituentSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}
