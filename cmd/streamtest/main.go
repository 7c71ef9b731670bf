// streamtest tails the live market channel for a market and prints events to
// the console. It is a connectivity check, not an ingestion path: stream
// events carry no trader wallet, so they are never persisted.
//
// Usage: go run ./cmd/streamtest --config configs/ingester.local.yaml --market 0x1234...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/polymarket-history/internal/api"
	"github.com/rickgao/polymarket-history/internal/config"
	"github.com/rickgao/polymarket-history/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	market := flag.String("market", "", "market to tail: condition ID or Gamma market ID")
	assets := flag.String("assets", "", "comma-separated token IDs to tail (skips market lookup)")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	_ = godotenv.Load()

	// The tail tool needs no database, so a missing config file is fine.
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		logger.Info("config file not found, using defaults", "path", *configPath)
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	assetIDs, err := resolveAssets(ctx, cfg, *market, *assets, logger)
	if err != nil {
		logger.Error("failed to resolve token IDs", "error", err)
		os.Exit(1)
	}
	logger.Info("tailing market channel", "url", cfg.Stream.URL, "assets", len(assetIDs))

	clientCfg := stream.DefaultClientConfig()
	clientCfg.URL = cfg.Stream.URL
	clientCfg.StaleTimeout = cfg.Stream.PingTimeout
	clientCfg.WriteTimeout = cfg.Stream.WriteTimeout
	clientCfg.BufferSize = cfg.Stream.BufferSize

	// Reconnect with exponential backoff until the context is cancelled.
	delay := cfg.Stream.ReconnectBaseDelay
	for ctx.Err() == nil {
		if err := tail(ctx, clientCfg, assetIDs, *verbose, logger); err != nil {
			logger.Warn("stream dropped", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}

		delay *= 2
		if delay > cfg.Stream.ReconnectMaxDelay {
			delay = cfg.Stream.ReconnectMaxDelay
		}
	}

	logger.Info("streamtest stopped")
}

// resolveAssets turns the command line into a list of token IDs, looking the
// market up on Gamma when tokens were not given directly.
func resolveAssets(ctx context.Context, cfg *config.IngesterConfig, market, assets string, logger *slog.Logger) ([]string, error) {
	if assets != "" {
		var ids []string
		for _, id := range strings.Split(assets, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	if market == "" {
		return nil, fmt.Errorf("either --market or --assets is required")
	}

	client := api.NewClient(
		cfg.API.GammaURL,
		cfg.API.DataURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	info, err := client.GetMarketInfo(ctx, market)
	if err != nil {
		return nil, err
	}

	// clobTokenIds is a JSON array serialized into a string field.
	packed, ok := info.StringField("clobTokenIds")
	if !ok {
		return nil, fmt.Errorf("market %s has no clobTokenIds", market)
	}
	var ids []string
	if err := json.Unmarshal([]byte(packed), &ids); err != nil {
		return nil, fmt.Errorf("parse clobTokenIds: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("market %s has no tokens", market)
	}
	return ids, nil
}

// tail runs one connection until it fails or the context is cancelled.
func tail(ctx context.Context, cfg stream.ClientConfig, assetIDs []string, verbose bool, logger *slog.Logger) error {
	client := stream.NewClient(cfg, logger)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	if err := client.Subscribe(assetIDs); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-client.Errors():
			return err
		case msg := <-client.Messages():
			events, err := stream.DecodeEvents(msg.Data)
			if err != nil {
				logger.Warn("undecodable event", "error", err, "raw", string(msg.Data))
				continue
			}
			for _, ev := range events {
				printEvent(ev, msg.ReceivedAt, verbose, logger)
			}
		}
	}
}

func printEvent(ev stream.MarketEvent, receivedAt time.Time, verbose bool, logger *slog.Logger) {
	if verbose {
		raw, _ := json.Marshal(ev)
		fmt.Println(string(raw))
		return
	}

	switch ev.EventType {
	case stream.EventLastTradePrice:
		logger.Info("trade",
			"market", ev.Market,
			"side", ev.Side,
			"price", ev.Price,
			"size", ev.Size,
			"received_at", receivedAt.Format(time.RFC3339Nano),
		)
	case stream.EventPriceChange:
		logger.Debug("price change", "market", ev.Market, "price", ev.Price)
	case stream.EventBook:
		logger.Debug("book snapshot", "asset", ev.AssetID)
	default:
		logger.Debug("event", "type", ev.EventType, "asset", ev.AssetID)
	}
}
