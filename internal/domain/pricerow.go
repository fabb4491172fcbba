package domain

// PriceRow is one instrument on one trading day, as delivered by the
// exchange feed. Corresponds to the dsex_prices table joined with the
// dsex_mapper reference data (sector/category per trading code).
type PriceRow struct {
	Date          string  `json:"date"`           // trading day, YYYY-MM-DD
	InstrumentID  string  `json:"trading_code"`   // unique within a day
	LastPrice     float64 `json:"ltp"`            // last traded price
	PreviousClose float64 `json:"ycp"`            // yesterday's closing price
	TradedValue   float64 `json:"value_mn"`       // traded value, millions
	TradedVolume  float64 `json:"volume"`         // traded volume, shares
	TradeCount    int     `json:"trade"`          // number of executed trades
	Sector        string  `json:"sector"`         // e.g. "Bank", "Pharmaceuticals"
	Category      string  `json:"category"`       // listing category: A, B, N, Z

	// Optional OHLC columns. Zero when the feed omits them; consumed only
	// by the stock timeline price overlay, never by aggregation.
	Open  float64 `json:"openp,omitempty"`
	High  float64 `json:"high,omitempty"`
	Low   float64 `json:"low,omitempty"`
	Close float64 `json:"closep,omitempty"`
}

// GroupDimension selects the secondary grouping column for daily
// aggregation.
type GroupDimension string

const (
	DimensionSector   GroupDimension = "sector"
	DimensionCategory GroupDimension = "category"
)

// GroupValue returns the row's value for the dimension. Unknown dimensions
// resolve to the empty string, which aggregates as its own group rather
// than failing.
func (r *PriceRow) GroupValue(dim GroupDimension) string {
	switch dim {
	case DimensionSector:
		return r.Sector
	case DimensionCategory:
		return r.Category
	}
	return ""
}
