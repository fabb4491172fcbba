package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"dsex-insights/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Market Insights\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Index: %s | Range: %s to %s | Trading Days: %d\n\n",
		r.IndexName, r.StartDate, r.EndDate, r.TradingDays))

	// Market Summary
	sb.WriteString("## Market Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Compounded Return %% | %s |\n", pct(r.Market.CompoundedReturnPct)))
	sb.WriteString(fmt.Sprintf("| Period Volatility %% | %s |\n", pct(r.Market.PeriodVolatilityPct)))
	sb.WriteString(fmt.Sprintf("| Avg Daily Value (mn) | %.2f |\n", r.Market.AvgTotalValue))
	sb.WriteString(fmt.Sprintf("| Avg Daily Volume | %.0f |\n", r.Market.AvgTotalVolume))
	sb.WriteString(fmt.Sprintf("| Avg Breadth %% | %s |\n", pct(r.Market.AvgBreadthPct)))
	sb.WriteString("\n")

	// Daily series
	sb.WriteString("## Daily Market Metrics\n\n")
	if len(r.MarketDaily) > 0 {
		sb.WriteString("| Date | Mean Return % | Breadth % | Dispersion % | Value (mn) | Volume | Count |\n")
		sb.WriteString("|------|---------------|-----------|--------------|------------|--------|-------|\n")
		for _, d := range r.MarketDaily {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.0f | %d |\n",
				d.Date, pct(d.MeanReturnPct), pct(d.BreadthPct), pct(d.ReturnDispersionPct),
				d.TotalValue, d.TotalVolume, d.ConstituentCount))
		}
	} else {
		sb.WriteString("No trading days in range.\n")
	}
	sb.WriteString("\n")

	// Group summaries
	sb.WriteString("## Sector Performance\n\n")
	writeGroupTable(&sb, r.Sectors)

	sb.WriteString("## Category Performance\n\n")
	writeGroupTable(&sb, r.Categories)

	// Comparison
	if r.Comparison != nil {
		c := r.Comparison
		sb.WriteString("## Comparison\n\n")
		sb.WriteString("| Entity | Return % | Volatility % | Pos. Days % | ADTV (mn) | Total Volume | Days |\n")
		sb.WriteString("|--------|----------|--------------|-------------|-----------|--------------|------|\n")
		writeComparisonRow(&sb, c.Target)
		writeComparisonRow(&sb, c.Benchmark)
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("**%s**\n\n", c.Verdict))
	}

	return sb.String()
}

func writeGroupTable(sb *strings.Builder, groups []domain.PeriodSummary) {
	if len(groups) == 0 {
		sb.WriteString("No groups in range.\n\n")
		return
	}

	sb.WriteString("| Group | Return % | Volatility % | Avg Breadth % | Avg Value Share % | Avg Value (mn) | Days |\n")
	sb.WriteString("|-------|----------|--------------|---------------|-------------------|----------------|------|\n")
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %.2f | %d |\n",
			g.GroupKey, pct(g.CompoundedReturnPct), pct(g.PeriodVolatilityPct),
			pct(g.AvgBreadthPct), pct(g.AvgValueSharePct), g.AvgTotalValue, g.TradingDays))
	}
	sb.WriteString("\n")
}

func writeComparisonRow(sb *strings.Builder, s domain.ComparisonStats) {
	sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.0f | %d |\n",
		s.EntityLabel, pct(s.CompoundedReturnPct), pct(s.PeriodVolatilityPct),
		pct(s.PositiveDaysPct), s.AvgDailyTradedValue, s.TotalTradedVolume, s.TradingDays))
}

// pct formats a percentage value, rendering NaN as "n/a" so an undefined
// compounded return never reads as zero.
func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// BuildVerdict phrases the relative return as an outperform or
// underperform line. Undefined returns yield a neutral verdict.
func BuildVerdict(target, bench domain.ComparisonStats, rel domain.RelativeMetrics) string {
	if math.IsNaN(rel.RelativeReturnPct) {
		return fmt.Sprintf("%s versus %s: period return undefined, no verdict.",
			target.EntityLabel, bench.EntityLabel)
	}
	if rel.RelativeReturnPct >= 0 {
		return fmt.Sprintf("%s is outperforming %s by %.2f%% (geometric mean).",
			target.EntityLabel, bench.EntityLabel, rel.RelativeReturnPct)
	}
	return fmt.Sprintf("%s is underperforming %s by %.2f%% (geometric mean).",
		target.EntityLabel, bench.EntityLabel, -rel.RelativeReturnPct)
}
