// Package main loads combined daily archive CSVs into storage.
//
// The expected input is the exchange's day-wise archive flattened into
// one CSV with a header row. Column names match the wire names used
// elsewhere: date, trading_code, ltp, ycp, value_mn, volume, trade,
// sector, category, and optionally openp, high, low, closep.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/observability"
	"dsex-insights/internal/storage"
	chstore "dsex-insights/internal/storage/clickhouse"
	"dsex-insights/internal/storage/migrations"
	pgstore "dsex-insights/internal/storage/postgres"
)

const batchSize = 500

func main() {
	loadEnvFile()

	csvPath := flag.String("csv", "", "Path to the combined archive CSV")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	skipDuplicates := flag.Bool("skip-duplicates", false, "Skip batches already ingested instead of failing")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags)

	if *csvPath == "" {
		logger.Fatal("--csv is required")
	}
	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required")
	}

	ctx := context.Background()

	var stores []storage.PriceRowStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run postgres migrations: %v", err)
		}
		stores = append(stores, pgstore.NewPriceRowStore(pool))
	}
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		stores = append(stores, chstore.NewPriceRowStore(conn))
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	start := time.Now()
	inserted, rejected, err := ingest(ctx, f, stores, *skipDuplicates, logger)
	if err != nil {
		logger.Fatalf("ingest: %v", err)
	}

	observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
	logger.Printf("Done in %v: %d rows inserted, %d rejected", time.Since(start), inserted, rejected)
}

// ingest streams the CSV into every store in batches.
func ingest(ctx context.Context, r io.Reader, stores []storage.PriceRowStore, skipDuplicates bool, logger *log.Logger) (int, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "trading_code", "ltp", "ycp"} {
		if _, ok := cols[required]; !ok {
			return 0, 0, fmt.Errorf("csv missing required column %q", required)
		}
	}

	var (
		batch    []domain.PriceRow
		inserted int
		rejected int
		line     = 1
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		for _, store := range stores {
			err := store.InsertBulk(ctx, batch)
			if errors.Is(err, storage.ErrDuplicateKey) && skipDuplicates {
				logger.Printf("batch ending at line %d already ingested, skipping", line)
				continue
			}
			if err != nil {
				return fmt.Errorf("insert batch ending at line %d: %w", line, err)
			}
		}
		inserted += len(batch)
		observability.RecordRowsIngested(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, rejected, fmt.Errorf("read csv: %w", err)
		}
		line++

		row, err := parseRecord(record, cols)
		if err != nil {
			rejected++
			observability.RecordRowRejected("parse")
			logger.Printf("line %d: %v", line, err)
			continue
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, rejected, err
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, rejected, err
	}
	return inserted, rejected, nil
}

// parseRecord maps one CSV record onto a PriceRow.
func parseRecord(record []string, cols map[string]int) (domain.PriceRow, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	getFloat := func(name string) (float64, error) {
		s := get(name)
		if s == "" {
			return 0, nil
		}
		// Archive files write thousands separators into numeric columns.
		s = strings.ReplaceAll(s, ",", "")
		return strconv.ParseFloat(s, 64)
	}

	var row domain.PriceRow
	row.Date = get("date")
	row.InstrumentID = get("trading_code")
	if row.Date == "" || row.InstrumentID == "" {
		return row, fmt.Errorf("missing date or trading_code")
	}

	var err error
	if row.LastPrice, err = getFloat("ltp"); err != nil {
		return row, fmt.Errorf("parse ltp: %w", err)
	}
	if row.PreviousClose, err = getFloat("ycp"); err != nil {
		return row, fmt.Errorf("parse ycp: %w", err)
	}
	if row.TradedValue, err = getFloat("value_mn"); err != nil {
		return row, fmt.Errorf("parse value_mn: %w", err)
	}
	if row.TradedVolume, err = getFloat("volume"); err != nil {
		return row, fmt.Errorf("parse volume: %w", err)
	}
	trade, err := getFloat("trade")
	if err != nil {
		return row, fmt.Errorf("parse trade: %w", err)
	}
	row.TradeCount = int(trade)

	row.Sector = get("sector")
	row.Category = get("category")

	if row.Open, err = getFloat("openp"); err != nil {
		return row, fmt.Errorf("parse openp: %w", err)
	}
	if row.High, err = getFloat("high"); err != nil {
		return row, fmt.Errorf("parse high: %w", err)
	}
	if row.Low, err = getFloat("low"); err != nil {
		return row, fmt.Errorf("parse low: %w", err)
	}
	if row.Close, err = getFloat("closep"); err != nil {
		return row, fmt.Errorf("parse closep: %w", err)
	}

	return row, nil
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
