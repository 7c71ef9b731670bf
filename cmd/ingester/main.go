// ingester backfills the full trade history of one or more markets.
// Usage: go run ./cmd/ingester --config configs/ingester.local.yaml --market 0x1234...,0x5678...
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rickgao/polymarket-history/internal/api"
	"github.com/rickgao/polymarket-history/internal/config"
	"github.com/rickgao/polymarket-history/internal/database"
	"github.com/rickgao/polymarket-history/internal/fetch"
	"github.com/rickgao/polymarket-history/internal/ingest"
	"github.com/rickgao/polymarket-history/internal/ratelimit"
	"github.com/rickgao/polymarket-history/internal/store"
	"github.com/rickgao/polymarket-history/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	markets := flag.String("market", "", "market to ingest: condition ID (0x...) or Gamma market ID; comma-separated for several")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Optional .env for ${VAR} expansion in the config file
	_ = godotenv.Load()

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if *markets == "" {
		logger.Error("no market given; use --market")
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"data_url", cfg.API.DataURL,
		"rate_limit", cfg.API.RateLimit,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	apiClient := api.NewClient(
		cfg.API.GammaURL,
		cfg.API.DataURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	limiter := ratelimit.New(cfg.API.RateLimit)
	trades := store.New(pool, logger)
	fetcher := fetch.New(fetch.Config{
		PageSize: cfg.Ingest.PageSize,
		MaxPages: cfg.Ingest.MaxPagesPerInterval,
	}, apiClient, limiter, logger)
	boundary := ingest.NewBoundaryResolver(apiClient, trades, cfg.FallbackStart(), logger)

	exitCode := 0

	for _, market := range strings.Split(*markets, ",") {
		market = strings.TrimSpace(market)
		if market == "" {
			continue
		}

		conditionID, err := apiClient.ResolveConditionID(ctx, market)
		if err != nil {
			logger.Error("failed to resolve market", "market", market, "error", err)
			exitCode = 1
			continue
		}

		orch := ingest.NewOrchestrator(ingest.Config{
			BatchSize: cfg.Ingest.BatchSize,
			Progress: func(intervalIndex, totalIntervals, newCount, duplicateCount int) {
				if (intervalIndex+1)%25 == 0 || intervalIndex+1 == totalIntervals {
					logger.Info("ingestion progress",
						"market", conditionID,
						"interval", intervalIndex+1,
						"total_intervals", totalIntervals,
						"new", newCount,
						"duplicates", duplicateCount,
					)
				}
			},
		}, boundary, fetcher, trades, logger)

		res, err := orch.Run(ctx, conditionID)
		if err != nil {
			logger.Error("ingestion failed",
				"market", conditionID,
				"run_id", res.RunID,
				"error", err,
			)
			exitCode = 1
			continue
		}

		logger.Info("ingestion finished",
			"market", conditionID,
			"run_id", res.RunID,
			"completed", res.Completed,
			"new", res.NewCount,
			"duplicates", res.DuplicateCount,
			"truncated_intervals", len(res.TruncatedIntervals),
			"failed_intervals", len(res.FailedIntervals),
			"remaining_intervals", len(res.RemainingIntervals),
		)

		for _, iv := range res.TruncatedIntervals {
			logger.Warn("interval hit the pagination cap; history may be incomplete",
				"market", conditionID,
				"start", iv.Start,
				"end", iv.End,
			)
		}
		for _, iv := range res.FailedIntervals {
			logger.Warn("interval could not be fetched; re-run to fill it",
				"market", conditionID,
				"start", iv.Start,
				"end", iv.End,
			)
		}

		if !res.Completed {
			logger.Info("run interrupted; re-run with the same market to resume",
				"market", conditionID,
			)
			break
		}
	}

	os.Exit(exitCode)
}
