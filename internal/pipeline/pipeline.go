// Package pipeline runs the end-to-end report flow: load stored rows,
// aggregate, summarize, render, write output files.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/metrics"
	"dsex-insights/internal/reporting"
)

// Output file names written by Run.
const (
	ReportFile      = "market_insights.md"
	DailyCSVFile    = "market_daily.csv"
	SectorCSVFile   = "sector_summary.csv"
	CategoryCSVFile = "category_summary.csv"
)

// Pipeline orchestrates report generation and file output.
type Pipeline struct {
	gen       *reporting.Generator
	outputDir string
	index     string
	target    *domain.BenchmarkSelector
	bench     *domain.BenchmarkSelector
}

// New creates a pipeline writing into outputDir, scoped to the full
// market index by default.
func New(agg *metrics.Aggregator, outputDir string) *Pipeline {
	return &Pipeline{
		gen:       reporting.NewGenerator(agg),
		outputDir: outputDir,
		index:     domain.IndexDSEX,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.gen = p.gen.WithClock(clock)
	return p
}

// WithIndex scopes the report to the named index.
func (p *Pipeline) WithIndex(index string) *Pipeline {
	if index != "" {
		p.index = index
	}
	return p
}

// WithComparison adds a target-versus-benchmark section to the report.
func (p *Pipeline) WithComparison(target, bench domain.BenchmarkSelector) *Pipeline {
	p.target = &target
	p.bench = &bench
	return p
}

// Run executes the full pipeline for [start, end] and writes output files:
// - market_insights.md
// - market_daily.csv
// - sector_summary.csv
// - category_summary.csv
func (p *Pipeline) Run(ctx context.Context, start, end string) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	report, err := p.gen.Generate(ctx, start, end, p.index, p.target, p.bench)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(p.outputDir, ReportFile), []byte(md), 0644); err != nil {
		return err
	}

	dailyCSV := reporting.RenderDailyCSV(report.MarketDaily)
	if err := os.WriteFile(filepath.Join(p.outputDir, DailyCSVFile), []byte(dailyCSV), 0644); err != nil {
		return err
	}

	sectorCSV := reporting.RenderPeriodCSV(report.Sectors)
	if err := os.WriteFile(filepath.Join(p.outputDir, SectorCSVFile), []byte(sectorCSV), 0644); err != nil {
		return err
	}

	categoryCSV := reporting.RenderPeriodCSV(report.Categories)
	if err := os.WriteFile(filepath.Join(p.outputDir, CategoryCSVFile), []byte(categoryCSV), 0644); err != nil {
		return err
	}

	return nil
}
