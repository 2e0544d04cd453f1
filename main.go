package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/morphogen/config"
	"github.com/pthm-cable/morphogen/runner"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to a YAML or TOML config (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and the config")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = population.seed from the config)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N steps (0 = unlimited)")
	script := flag.String("script", "", "Lua behaviour script (overrides behavior.script)")
	check := flag.Bool("check", false, "Abort on non-finite positions, forces or torques")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)

	r, err := runner.New(cfg, runner.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Script:    *script,
		Check:     *check,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	logger.Info("starting simulation",
		"seed", r.Seed(),
		"cells", r.World().Len(),
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := 0
	if err := r.Run(ctx, *maxTicks); err != nil {
		logger.Error("simulation failed", "error", err)
		code = 1
	}

	if err := r.Close(); err != nil {
		logger.Error("failed to close outputs", "error", err)
		code = 1
	}
	logger.Info("simulation finished", "frame", r.Frame())
	os.Exit(code)
}
