package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"TxnEngine/internal/core"
	"TxnEngine/internal/ingestion"
	"TxnEngine/internal/observability"
	"TxnEngine/internal/projection"
	"TxnEngine/internal/query"
	"TxnEngine/internal/report"
)

// Config holds the streaming-shell configuration, loaded from
// environment variables. Batch mode only needs the input path.
type Config struct {
	NATSURL string

	RecordChanSize     int
	ProjectionChanSize int
	PublishChanSize    int
	DedupCapacity      int

	HTTPAddr    string
	MetricsAddr string
}

func DefaultConfig() Config {
	return Config{
		NATSURL:            envOrDefault("TXN_NATS_URL", "nats://localhost:4222"),
		RecordChanSize:     envIntOrDefault("TXN_RECORD_CHAN_SIZE", 1024),
		ProjectionChanSize: envIntOrDefault("TXN_PROJECTION_CHAN_SIZE", 2048),
		PublishChanSize:    envIntOrDefault("TXN_PUBLISH_CHAN_SIZE", 2048),
		DedupCapacity:      envIntOrDefault("TXN_DEDUP_CAPACITY", 100_000),
		HTTPAddr:           envOrDefault("TXN_HTTP_ADDR", ":8080"),
		MetricsAddr:        envOrDefault("TXN_METRICS_ADDR", ":9091"),
	}
}

func main() {
	stream := flag.Bool("stream", false, "consume records from NATS instead of a CSV file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: txnengine [flags] <input.csv>\n")
		fmt.Fprintf(os.Stderr, "       txnengine -stream\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := observability.NewLogger("txnengine")
	metrics := observability.NewMetrics()

	if *stream {
		if err := runStream(DefaultConfig(), log, metrics); err != nil {
			log.Fatal().Err(err).Msg("stream mode failed")
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := runBatch(flag.Arg(0), log, metrics); err != nil {
		log.Fatal().Err(err).Msg("batch run failed")
	}
}

// runBatch processes one CSV file in order and writes the final
// account table to stdout. Structural errors abort the run; business
// no-ops never do.
func runBatch(path string, log zerolog.Logger, metrics *observability.Metrics) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	engine := core.NewEngine(log, metrics, nil, nil)
	reader := ingestion.NewCSVReader(f)

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		engine.Apply(rec)
	}

	if err := report.WriteAccounts(os.Stdout, engine.Ledger()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	digest := engine.Ledger().Digest()
	log.Info().
		Int64("applied", engine.Applied()).
		Int64("ignored", engine.Ignored()).
		Int("accounts", engine.Ledger().Len()).
		Hex("ledger_digest", digest[:]).
		Msg("batch run complete")

	return nil
}

// runStream consumes records from NATS JetStream, keeps a queryable
// account projection, and publishes account updates until interrupted.
func runStream(cfg Config, log zerolog.Logger, metrics *observability.Metrics) error {
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()
	log.Info().Str("nats_url", cfg.NATSURL).Msg("stream mode starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("txnengine-"+runID.String()))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream: %w", err)
	}

	subjectCfg := ingestion.DefaultSubject()
	if err := ingestion.EnsureStream(ctx, js, subjectCfg); err != nil {
		return err
	}
	if err := ingestion.EnsureAccountStream(ctx, js); err != nil {
		return err
	}

	recordChan := make(chan ingestion.RawRecord, cfg.RecordChanSize)
	projectionChan := make(chan core.AccountUpdate, cfg.ProjectionChanSize)
	publishChan := make(chan core.AccountUpdate, cfg.PublishChanSize)

	engine := core.NewEngine(log, metrics, projectionChan, publishChan)
	dedup := core.NewIdempotencyLRU(cfg.DedupCapacity)

	proj := projection.NewAccountProjection()
	publisher := ingestion.NewAccountPublisher(js, publishChan, observability.NewLogger("publisher"))

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		proj.Run(projectionChan)
	}()
	go func() {
		defer workers.Done()
		publisher.Run(ctx)
	}()

	// --- HTTP: query + health ---
	health := observability.NewHealthChecker()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.LivenessHandler)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	query.NewQueryService(proj, observability.NewLogger("query")).Register(mux)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}()

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	subscriber := ingestion.NewNATSSubscriber(js, recordChan)
	if err := subscriber.Subscribe(ctx, subjectCfg); err != nil {
		return err
	}
	health.SetReady(true)
	log.Info().Str("subject", subjectCfg.Subject).Msg("consuming records")

	// --- Engine loop: strictly sequential, arrival order ---
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case raw := <-recordChan:
			handleRaw(engine, dedup, metrics, log, raw)
		}
	}

	// --- Shutdown: stop intake, drain, close the read side ---
	log.Info().Msg("shutting down")
	health.SetReady(false)
	subscriber.Stop()

drain:
	for {
		select {
		case raw := <-recordChan:
			handleRaw(engine, dedup, metrics, log, raw)
		default:
			break drain
		}
	}

	close(projectionChan)
	close(publishChan)
	workers.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	digest := engine.Ledger().Digest()
	log.Info().
		Int64("applied", engine.Applied()).
		Int64("ignored", engine.Ignored()).
		Int("accounts", engine.Ledger().Len()).
		Hex("ledger_digest", digest[:]).
		Msg("stream run complete")

	return nil
}

// handleRaw parses, deduplicates, and applies one stream record.
// Malformed messages are ACKed and counted: redelivering them cannot
// succeed, and a poison message must not stall the stream.
func handleRaw(engine *core.Engine, dedup *core.IdempotencyLRU, metrics *observability.Metrics, log zerolog.Logger, raw ingestion.RawRecord) {
	rec, key, err := ingestion.ParseRawRecord(raw)
	if err != nil {
		log.Error().Err(err).Str("subject", raw.Subject).Msg("malformed record")
		metrics.StreamRecords.WithLabelValues("parse_error").Inc()
		raw.AckFunc()
		return
	}

	if dedup.Contains(key) {
		metrics.StreamRecords.WithLabelValues("duplicate").Inc()
		raw.AckFunc()
		return
	}

	engine.Apply(rec)
	dedup.Add(key)
	metrics.StreamRecords.WithLabelValues("processed").Inc()
	metrics.DedupSize.Set(float64(dedup.Size()))
	raw.AckFunc()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
