// File path: cmd/querylensd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/querylens/querylens/internal/alerts"
	"github.com/querylens/querylens/internal/analysis"
	"github.com/querylens/querylens/internal/api"
	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/datasource"
	"github.com/querylens/querylens/internal/llm"
	"github.com/querylens/querylens/internal/pipeline"
	"github.com/querylens/querylens/internal/store"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("querylens: .env file not loaded", "error", err)
	}

	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	catalogPath := flag.String("catalog", "", "path to the SQLite catalog database (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("querylens: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		logger.Error("querylens: provider setup failed", "error", err)
		fmt.Println("provider error:", err)
		os.Exit(1)
	}

	catalog, err := store.Open(cfg.CatalogPath)
	if err != nil {
		logger.Error("querylens: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer catalog.Close()

	var decrypter datasource.Decrypter
	if cfg.EncryptionKey != "" {
		decrypter, err = datasource.NewSecretboxDecrypter(cfg.EncryptionKey)
		if err != nil {
			logger.Error("querylens: encryption key invalid", "error", err)
			fmt.Println("encryption key error:", err)
			os.Exit(1)
		}
	}
	executor := datasource.NewExecutor(decrypter)

	processor := pipeline.NewProcessor(
		analysis.NewIntentExtractor(provider),
		analysis.NewSQLGenerator(provider),
		executor,
		analysis.NewNarrativeGenerator(provider),
		catalog,
		cfg.CacheTTL,
	)
	defer processor.Close()
	evaluator := alerts.NewEvaluator(catalog, executor, alerts.NewChannelNotifier(cfg.Slack), clockwork.NewRealClock())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.CheckInterval > 0 {
		go runScheduler(ctx, evaluator, cfg.CheckInterval)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(processor, evaluator, catalog),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("querylens: shutdown failed", "error", err)
		}
	}()

	logger.Info("querylens: listening", "addr", cfg.Addr, "provider", provider.Name())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("querylens: server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("querylens: stopped")
}

// runScheduler evaluates the active alert fleet on a fixed interval. Each
// evaluation is fault-isolated inside the evaluator, so one broken alert
// never stops the loop.
func runScheduler(ctx context.Context, evaluator *alerts.Evaluator, interval time.Duration) {
	logger := common.Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			outcomes := evaluator.EvaluateAll(ctx)
			triggered := 0
			for _, outcome := range outcomes {
				if outcome.Triggered {
					triggered++
				}
			}
			if len(outcomes) > 0 {
				logger.Info("querylens: alert sweep complete", "evaluated", len(outcomes), "triggered", triggered)
			}
		}
	}
}
