package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"triage/internal/checkpoint"
	"triage/internal/config"
	"triage/internal/logging"
	"triage/internal/source"
	"triage/internal/triage"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// buildTriager wires a triager per the configuration. The returned cleanup
// closes the checkpoint store when one was opened.
func (c *commandContext) buildTriager(ctx context.Context, logger *slog.Logger) (*triage.Triager, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

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

	triager, err := triage.NewFromConfig(ctx, cfg, watermark, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return triager, cleanup, nil
}
