package main

import (
	"context"
	"fmt"
	"log/slog"

	"triage/internal/checkpoint"
	"triage/internal/config"
	"triage/internal/daemon"
	"triage/internal/logging"
	"triage/internal/source"
	"triage/internal/triage"
)

// bootstrap wires the daemon's dependencies: a checkpoint-backed watermark
// for modified-since sources, the triager, and the daemon itself.
func bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	cleanup := func() {}
	var watermark source.Watermark
	if cfg.Source.Kind == "modified" {
		store, err := checkpoint.Open(cfg.Daemon.CheckpointPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		watermark = store.Watermark(cfg.Project.GID)
		cleanup = func() { _ = store.Close() }
	}

	triager, err := triage.NewFromConfig(ctx, cfg, watermark, logging.NewComponentLogger(logger, "triager"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build triager: %w", err)
	}

	d, err := daemon.New(cfg, triager, logging.NewComponentLogger(logger, "daemon"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, cleanup, nil
}
