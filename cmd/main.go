package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	publish "github.com/okian/foodrank/internal/adapters/publish"
	repository "github.com/okian/foodrank/internal/adapters/repository"
	app "github.com/okian/foodrank/internal/app"
	"github.com/okian/foodrank/internal/config"
	"github.com/okian/foodrank/pkg/logger"
	"github.com/okian/foodrank/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client, err := repository.NewClient(ctx, cfg.Region, cfg.Endpoint)
	if err != nil {
		log.Error(ctx, "failed to build DynamoDB client", logger.Error(err))
		return 1
	}

	source := repository.New(client, cfg.Table,
		repository.WithPageSize(cfg.ScanPageSize),
		repository.WithScanLimit(cfg.ScanLimit),
		repository.WithTimeout(cfg.FetchTimeout()),
		repository.WithRetryBackoff(cfg.RetryBackoff()),
		repository.WithLogger(log.Named("fetch")),
	)
	publisher := publish.New(cfg.OutputDir,
		publish.WithJSONFile(cfg.JSONFile),
		publish.WithChartFile(cfg.ChartFile),
		publish.WithLogger(log.Named("publish")),
	)
	svc := app.New(
		app.WithSource(source),
		app.WithPublisher(publisher),
		app.WithTopK(cfg.TopK),
		app.WithLogger(log),
	)

	// One-shot mode: result feeds the scheduler's exit-code handling.
	if cfg.Interval() <= 0 {
		if err := svc.Run(ctx); err != nil {
			log.Error(ctx, "run failed",
				logger.String("kind", app.ErrorKind(err)),
				logger.Error(err),
			)
			return 1
		}
		return 0
	}

	// Daemon mode: run on a fixed cadence until signalled.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	log.Info(ctx, "starting scheduled runs", logger.Duration("interval", cfg.Interval()))

	if err := svc.Run(ctx); err != nil {
		log.Error(ctx, "run failed", logger.String("kind", app.ErrorKind(err)), logger.Error(err))
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return 0
		case <-ticker.C:
			// A failed tick is logged, not fatal; the next tick retries.
			if err := svc.Run(ctx); err != nil {
				log.Error(ctx, "run failed", logger.String("kind", app.ErrorKind(err)), logger.Error(err))
			}
		}
	}
}

// serveMetrics exposes /metrics and /healthz until the context ends.
func serveMetrics(ctx context.Context, addr string) {
	log := logger.Get()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
