package reporting

import (
	"fmt"
	"math"
	"strings"

	"dsex-insights/internal/domain"
)

// RenderDailyCSV renders a daily metrics series as CSV string.
func RenderDailyCSV(daily []domain.DailyGroupMetrics) string {
	var sb strings.Builder

	sb.WriteString("date,group_key,mean_return_pct,breadth_pct,return_dispersion_pct,")
	sb.WriteString("total_value,total_volume,constituent_count,value_share_pct\n")

	for _, d := range daily {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%.6f\n",
			d.Date,
			d.GroupKey,
			d.MeanReturnPct,
			d.BreadthPct,
			d.ReturnDispersionPct,
			d.TotalValue,
			d.TotalVolume,
			d.ConstituentCount,
			d.ValueSharePct,
		))
	}

	return sb.String()
}

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}

// RenderPeriodCSV renders period summaries as CSV string. NaN compounded
// returns serialize as empty cells.
func RenderPeriodCSV(summaries []domain.PeriodSummary) string {
	var sb strings.Builder

	sb.WriteString("group_key,compounded_return_pct,period_volatility_pct,")
	sb.WriteString("avg_total_value,avg_total_volume,avg_breadth_pct,avg_value_share_pct,trading_days\n")

	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%d\n",
			s.GroupKey,
			csvFloat(s.CompoundedReturnPct),
			s.PeriodVolatilityPct,
			s.AvgTotalValue,
			s.AvgTotalVolume,
			s.AvgBreadthPct,
			s.AvgValueSharePct,
			s.TradingDays,
		))
	}

	return sb.String()
}
