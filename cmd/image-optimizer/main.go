// cmd/image-optimizer/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"club-la-victoria/internal/common/config"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/optimizer"
	"club-la-victoria/internal/optimizer/webp"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console", "stderr").Error("config load failed", zap.Error(err))
		return 1
	}

	// Logs default to stderr; stdout carries only the report.
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	optCfg, err := optimizer.FromAppConfig(cfg.Optimizer)
	if err != nil {
		zapLog.Error("invalid optimizer configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := optimizer.NewRunner(optCfg, webp.New(), log)

	var summary *optimizer.Summary
	if optCfg.Manifest != "" {
		manifest, err := optimizer.LoadManifest(optCfg.Manifest)
		if err != nil {
			zapLog.Error("manifest load failed", zap.String("manifest", optCfg.Manifest), zap.Error(err))
			return 1
		}
		summary = runner.RunTasks(ctx, manifest.Tasks(runner.Planner(optCfg.Root)))
	} else {
		summary, err = runner.Run(ctx, optCfg.Root)
		if err != nil {
			zapLog.Error("asset root cannot be read", zap.String("root", optCfg.Root), zap.Error(err))
			return 1
		}
	}

	if err := optimizer.Report(os.Stdout, summary); err != nil {
		zapLog.Error("report write failed", zap.Error(err))
		return 1
	}

	if summary.Failed > 0 && optCfg.FailOnError {
		return 1
	}
	return 0
}
