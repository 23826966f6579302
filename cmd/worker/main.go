package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/config"
	"github.com/cancun/autodj/internal/llmplan"
	"github.com/cancun/autodj/internal/queue"
	"github.com/cancun/autodj/internal/separator"
	"github.com/cancun/autodj/internal/storage"
)

// worker (cmd/worker) is the queue-driven replacement for the teacher's
// gRPC engine server: instead of one request-response API, it runs
// -worker-count goroutines per named stream, each picking a job off
// Redis, running it through the transition-engine pipeline, and
// publishing a result. Startup/shutdown follows the exact same signal
// handling idiom as the teacher's cmd/engine/main.go, generalized from
// "stop accepting gRPC connections" to "stop every consumer goroutine".
func main() {
	cfg := config.Parse()

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn("sentry init failed, continuing without error reporting", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	blobs, err := storage.NewBlobs(cfg.StorageRoot)
	if err != nil {
		logger.Error("failed to prepare storage root", "error", err)
		os.Exit(1)
	}

	qc := queue.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	defer qc.Close()

	var llm llmplan.Planner = llmplan.NoopPlanner{}
	if cfg.LLMAPIKey != "" {
		llm = llmplan.NewOpenAIPlanner(cfg.LLMAPIKey, cfg.LLMModel, logger)
		logger.Info("LLM planning port enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("LLM planning port disabled, rule-based planner only")
	}

	sharedSep := separator.NewDefaultShared(cfg.SeparatorCmd, nil, logger)

	w := &worker{
		db:     db,
		blobs:  blobs,
		queue:  qc,
		sep:    sharedSep,
		llm:    llm,
		mp3:    audio.DefaultMP3Encoder(),
		concat: audio.NewFFmpegConcatenator(""),
		logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig)
		cancel()
	}()

	consumer := queue.NewConsumer(qc, logger)
	consumer.ReportPanic = func(recovered any) {
		if cfg.SentryDSN != "" {
			sentry.CurrentHub().Recover(recovered)
		}
	}

	consumer.Register(queue.StreamAnalyze, w.handleAnalyze)
	consumer.Register(queue.StreamTransition, w.handleTransition)
	consumer.Register(queue.StreamDraftTransition, w.handleTransition)
	consumer.Register(queue.StreamMix, w.handleMix)

	logger.Info("starting worker",
		"worker_count", cfg.WorkerCount,
		"redis_addr", cfg.RedisAddr,
		"data_dir", cfg.DataDir,
		"storage_root", cfg.StorageRoot,
	)

	consumer.RunWithConcurrency(ctx, cfg.WorkerCount)
	logger.Info("worker stopped")
}
