// Package main generates a market insights report for a date range and
// writes Markdown and CSV output files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"dsex-insights/internal/config"
	"dsex-insights/internal/domain"
	"dsex-insights/internal/metrics"
	"dsex-insights/internal/pipeline"
	"dsex-insights/internal/storage"
	chstore "dsex-insights/internal/storage/clickhouse"
	"dsex-insights/internal/storage/memory"
	"dsex-insights/internal/storage/migrations"
	pgstore "dsex-insights/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (preferred for range scans when set)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of a database")
	start := flag.String("start", "", "Range start date (YYYY-MM-DD)")
	end := flag.String("end", "", "Range end date (YYYY-MM-DD)")
	index := flag.String("index", domain.IndexDSEX, "Index scope: DSEX or DS30")
	ds30File := flag.String("ds30-file", os.Getenv("DS30_FILE"), "Path to DS30 constituent list (defaults to the bundled list)")
	compare := flag.String("compare", "", "Optional comparison, e.g. \"Stock: GP vs Index: DSEX\"")
	flag.Parse()

	ctx := context.Background()

	if *start == "" || *end == "" {
		if *useFixtures {
			*start, *end = "2024-01-01", "2024-01-31"
		} else {
			fmt.Fprintln(os.Stderr, "Error: --start and --end are required")
			os.Exit(1)
		}
	}
	if !*useFixtures && *postgresDSN == "" && *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --clickhouse-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	constituents, err := loadConstituents(*ds30File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading constituent list: %v\n", err)
		os.Exit(1)
	}

	store, cleanup, err := createStore(ctx, *useFixtures, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	agg := metrics.NewAggregator(store, constituents)

	p := pipeline.New(agg, *outputDir).WithIndex(*index)
	if *compare != "" {
		target, bench, err := parseComparison(*compare)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		p = p.WithComparison(target, bench)
	}

	if err := p.Run(ctx, *start, *end); err != nil {
		fmt.Fprintf(os.Stderr, "Error running pipeline: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.ReportFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.DailyCSVFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.SectorCSVFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.CategoryCSVFile)
}

// loadConstituents loads the DS30 list from a file, falling back to the
// bundled snapshot.
func loadConstituents(path string) (domain.ConstituentSet, error) {
	if path == "" {
		return config.DefaultConstituents(), nil
	}
	return config.LoadConstituentFile(path)
}

// parseComparison splits "TargetLabel vs BenchLabel" into two selectors.
func parseComparison(s string) (domain.BenchmarkSelector, domain.BenchmarkSelector, error) {
	parts := strings.SplitN(s, " vs ", 2)
	if len(parts) != 2 {
		return domain.BenchmarkSelector{}, domain.BenchmarkSelector{},
			fmt.Errorf("comparison must be \"<target> vs <benchmark>\", got %q", s)
	}
	target := domain.ParseSelector(parts[0])
	bench := domain.ParseSelector(parts[1])
	return target, bench, nil
}

// createStore builds the backing PriceRowStore. ClickHouse is preferred
// for reporting because range scans are its shape of work; Postgres is
// the fallback for deployments that only run the transactional store.
func createStore(ctx context.Context, useFixtures bool, postgresDSN, clickhouseDSN string) (storage.PriceRowStore, func(), error) {
	if useFixtures {
		store := memory.NewPriceRowStore()
		if err := pipeline.LoadFixtures(ctx, store); err != nil {
			return nil, nil, fmt.Errorf("load fixtures: %w", err)
		}
		return store, func() {}, nil
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return chstore.NewPriceRowStore(conn), func() { conn.Close() }, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	return pgstore.NewPriceRowStore(pool), func() { pool.Close() }, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
