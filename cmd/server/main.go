// Package main provides the insights API server:
// - JSON endpoints for market, group, stock timeline, and comparison queries
// - optional live quote feed kept in an in-memory last-quote cache
// - Prometheus metrics and health endpoints
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"dsex-insights/internal/config"
	"dsex-insights/internal/domain"
	"dsex-insights/internal/feed"
	"dsex-insights/internal/metrics"
	"dsex-insights/internal/observability"
	"dsex-insights/internal/pipeline"
	"dsex-insights/internal/storage"
	chstore "dsex-insights/internal/storage/clickhouse"
	"dsex-insights/internal/storage/memory"
	"dsex-insights/internal/storage/migrations"
	pgstore "dsex-insights/internal/storage/postgres"
)

// Server holds the API components.
type Server struct {
	agg    *metrics.Aggregator
	logger *log.Logger

	// Last quote per trading code, fed by the optional live stream.
	quotesMu sync.RWMutex
	quotes   map[string]domain.PriceRow

	ds30Size int
	started  time.Time
}

func main() {
	loadEnvFile()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (preferred for range scans when set)")
	feedEndpoint := flag.String("feed-endpoint", os.Getenv("FEED_WS_ENDPOINT"), "Optional quote feed WebSocket endpoint")
	useFixtures := flag.Bool("use-fixtures", false, "Serve in-memory fixtures instead of a database")
	ds30File := flag.String("ds30-file", os.Getenv("DS30_FILE"), "Path to DS30 constituent list (defaults to the bundled list)")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useFixtures && *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required (use --use-fixtures for demo data)")
	}

	constituents, err := loadConstituents(*ds30File)
	if err != nil {
		logger.Fatalf("load constituent list: %v", err)
	}
	logger.Printf("DS30 constituents: %d", len(constituents))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createStore(ctx, *useFixtures, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("create store: %v", err)
	}
	defer cleanup()

	server := &Server{
		agg:      metrics.NewAggregator(store, constituents),
		logger:   logger,
		quotes:   make(map[string]domain.PriceRow),
		ds30Size: len(constituents),
		started:  time.Now(),
	}

	// Optional live feed
	if *feedEndpoint != "" {
		client, err := feed.NewClient(ctx, *feedEndpoint, nil)
		if err != nil {
			logger.Fatalf("connect quote feed: %v", err)
		}
		defer client.Close()
		go server.consumeQuotes(client)
		logger.Printf("Quote feed connected: %s", *feedEndpoint)
	}

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// consumeQuotes drains the feed into the last-quote cache.
func (s *Server) consumeQuotes(client *feed.Client) {
	for row := range client.Quotes() {
		s.quotesMu.Lock()
		s.quotes[row.InstrumentID] = row
		s.quotesMu.Unlock()
	}
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	mux.HandleFunc("/api/market/daily", s.handleMarketDaily)
	mux.HandleFunc("/api/market/period", s.handleMarketPeriod)
	mux.HandleFunc("/api/groups/daily", s.handleGroupsDaily)
	mux.HandleFunc("/api/groups/period", s.handleGroupsPeriod)
	mux.HandleFunc("/api/stock/timeline", s.handleStockTimeline)
	mux.HandleFunc("/api/stock/compare", s.handleCompare)
	mux.HandleFunc("/api/quotes/latest", s.handleLatestQuotes)

	return mux
}

// rangeParams extracts and validates the common query parameters.
func rangeParams(r *http.Request) (start, end, index string, err error) {
	q := r.URL.Query()
	start, end = q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		return "", "", "", fmt.Errorf("start and end query parameters are required")
	}
	return start, end, q.Get("index"), nil
}

func (s *Server) handleMarketDaily(w http.ResponseWriter, r *http.Request) {
	start, end, index, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t0 := time.Now()
	daily, err := s.agg.MarketDaily(r.Context(), start, end, index)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("market_daily", time.Since(t0).Seconds())

	writeJSON(w, daily)
}

func (s *Server) handleMarketPeriod(w http.ResponseWriter, r *http.Request) {
	start, end, index, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t0 := time.Now()
	summary, err := s.agg.MarketPeriod(r.Context(), start, end, index)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("market_period", time.Since(t0).Seconds())

	writeJSON(w, periodJSON(summary))
}

func (s *Server) handleGroupsDaily(w http.ResponseWriter, r *http.Request) {
	start, end, index, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dim, err := parseDimension(r.URL.Query().Get("dim"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t0 := time.Now()
	daily, err := s.agg.GroupedDaily(r.Context(), start, end, index, dim)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("groups_daily", time.Since(t0).Seconds())

	writeJSON(w, daily)
}

func (s *Server) handleGroupsPeriod(w http.ResponseWriter, r *http.Request) {
	start, end, index, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dim, err := parseDimension(r.URL.Query().Get("dim"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t0 := time.Now()
	summaries, err := s.agg.GroupedPeriod(r.Context(), start, end, index, dim)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("groups_period", time.Since(t0).Seconds())

	out := make([]periodResponse, len(summaries))
	for i, summary := range summaries {
		out[i] = periodJSON(summary)
	}
	writeJSON(w, out)
}

func (s *Server) handleStockTimeline(w http.ResponseWriter, r *http.Request) {
	start, end, _, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("code query parameter is required"))
		return
	}
	sel := domain.IndexSelector(domain.IndexDSEX)
	if label := r.URL.Query().Get("benchmark"); label != "" {
		sel = domain.ParseSelector(label)
	}

	t0 := time.Now()
	timeline, err := s.agg.StockTimeline(r.Context(), start, end, code, sel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("stock_timeline", time.Since(t0).Seconds())

	writeJSON(w, timeline)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start, end, _, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q := r.URL.Query()
	targetLabel, benchLabel := q.Get("target"), q.Get("benchmark")
	if targetLabel == "" || benchLabel == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("target and benchmark query parameters are required"))
		return
	}

	t0 := time.Now()
	target, bench, rel, err := s.agg.Compare(r.Context(), start, end,
		domain.ParseSelector(targetLabel), domain.ParseSelector(benchLabel))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observability.RecordAggregation("compare", time.Since(t0).Seconds())

	writeJSON(w, comparisonEnvelope{
		Target:    comparisonJSON(target),
		Benchmark: comparisonJSON(bench),
		Relative:  relativeJSON(rel),
	})
}

func (s *Server) handleLatestQuotes(w http.ResponseWriter, r *http.Request) {
	s.quotesMu.RLock()
	rows := make([]domain.PriceRow, 0, len(s.quotes))
	for _, row := range s.quotes {
		rows = append(rows, row)
	}
	s.quotesMu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].InstrumentID < rows[j].InstrumentID })
	writeJSON(w, rows)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	QuotesSeen  int    `json:"quotes_cached"`
	DS30Members int    `json:"ds30_members"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.quotesMu.RLock()
	cached := len(s.quotes)
	s.quotesMu.RUnlock()

	writeJSON(w, StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		QuotesSeen:  cached,
		DS30Members: s.ds30Size,
	})
}

// parseDimension maps the dim query parameter onto a group dimension.
func parseDimension(dim string) (domain.GroupDimension, error) {
	switch strings.ToLower(dim) {
	case "sector", "":
		return domain.DimensionSector, nil
	case "category":
		return domain.DimensionCategory, nil
	}
	return "", fmt.Errorf("dim must be sector or category, got %q", dim)
}

// JSON shaping. encoding/json cannot represent NaN, so every field that
// may carry the undefined-compounding sentinel is re-typed as a pointer
// and NaN becomes null on the wire.

type periodResponse struct {
	domain.PeriodSummary
	CompoundedReturnPct *float64 `json:"compounded_return_pct"`
}

func periodJSON(s domain.PeriodSummary) periodResponse {
	return periodResponse{PeriodSummary: s, CompoundedReturnPct: maybe(s.CompoundedReturnPct)}
}

type comparisonResponse struct {
	domain.ComparisonStats
	CompoundedReturnPct *float64 `json:"compounded_return_pct"`
}

func comparisonJSON(s domain.ComparisonStats) comparisonResponse {
	return comparisonResponse{ComparisonStats: s, CompoundedReturnPct: maybe(s.CompoundedReturnPct)}
}

type relativeResponse struct {
	RelativeReturnPct *float64 `json:"relative_return_pct"`
	VolatilityGapPct  *float64 `json:"volatility_gap_pct"`
	BreadthLeadPct    *float64 `json:"breadth_lead_pct"`
}

func relativeJSON(r domain.RelativeMetrics) relativeResponse {
	return relativeResponse{
		RelativeReturnPct: maybe(r.RelativeReturnPct),
		VolatilityGapPct:  maybe(r.VolatilityGapPct),
		BreadthLeadPct:    maybe(r.BreadthLeadPct),
	}
}

type comparisonEnvelope struct {
	Target    comparisonResponse `json:"target"`
	Benchmark comparisonResponse `json:"benchmark"`
	Relative  relativeResponse   `json:"relative"`
}

func maybe(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// loadConstituents loads the DS30 list from a file, falling back to the
// bundled snapshot.
func loadConstituents(path string) (domain.ConstituentSet, error) {
	if path == "" {
		return config.DefaultConstituents(), nil
	}
	return config.LoadConstituentFile(path)
}

// createStore builds the backing PriceRowStore.
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
