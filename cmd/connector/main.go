// Command connector runs the Binance USDT-margined futures connector: it
// loads contracts and balances over REST, keeps a live top-of-book cache fed
// by the market-data websocket, and reports connector notices until stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftline/binancefutures/config"
	"github.com/driftline/binancefutures/internal/binance"
	"github.com/driftline/binancefutures/internal/observability"
	"github.com/driftline/binancefutures/lib/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "connector: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML settings file (environment applies on top)")
	flag.Parse()

	observability.SetLogger(observability.NewSlog(nil))

	cfg, err := loadSettings(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			observability.Log().Error("telemetry shutdown failed",
				observability.F("error", err.Error()))
		}
	}()

	client, err := binance.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start connector: %w", err)
	}
	defer client.Close()

	observability.Log().Info("connector started",
		observability.F("network", string(cfg.Network)),
		observability.F("contracts", len(client.KnownContracts())))

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			reportNotices(client)
			observability.Log().Info("connector stopping")
			return nil
		case <-ticker.C:
			reportNotices(client)
		}
	}
}

func loadSettings(path string) (config.Settings, error) {
	if path == "" {
		return config.FromEnv(), nil
	}
	cfg, err := config.FromFile(path)
	if err != nil {
		return config.Settings{}, err
	}
	return cfg, nil
}

func reportNotices(client *binance.Client) {
	for _, notice := range client.Notices() {
		observability.Log().Info("connector notice",
			observability.F("message", notice.Message),
			observability.F("time", notice.Time.Format(time.RFC3339)))
	}
}
