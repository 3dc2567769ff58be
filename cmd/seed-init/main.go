// Command seed-init pushes the default seed plan to an empty store.
// It is a one-shot tool: a store that already holds a plan is left
// untouched.
package main

import (
	"context"
	"os"
	"time"

	"github.com/tomcoffee/kimono-sim/internal/backend"
	"github.com/tomcoffee/kimono-sim/internal/cli"
	"github.com/tomcoffee/kimono-sim/internal/core"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	existing, err := result.Store.LoadPlan(ctx)
	if err != nil {
		logger.Error("Failed to read store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if len(existing) > 0 {
		logger.Info("Store already holds a plan, nothing to do",
			"records", len(existing), "backend", cfg.DataBackend)
		return
	}

	seed := core.GenerateSeed(cfg.SeedYear, cfg.SeedMonth, cfg.SeedCount)
	if err := result.Store.SavePlan(ctx, seed); err != nil {
		logger.Error("Failed to write seed plan", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	logger.Info("Seed plan written",
		"records", len(seed),
		"first_month", seed[0].MonthKey(),
		"last_month", seed[len(seed)-1].MonthKey(),
		"backend", cfg.DataBackend)
}
