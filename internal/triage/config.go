package triage

import (
	"context"
	"fmt"
	"log/slog"

	"triage/internal/asana"
	"triage/internal/config"
	"triage/internal/sorter"
	"triage/internal/source"
	"triage/internal/timespan"
)

// NewFromConfig builds a triager wired per the configuration: an HTTP
// client against the configured API, the configured source strategy, and a
// sorter registered for every declared sort section. The watermark is only
// used by the modified-since source and may be nil otherwise.
func NewFromConfig(ctx context.Context, cfg *config.Config, watermark source.Watermark, logger *slog.Logger) (*Triager, error) {
	client := asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.AccessToken, nil)

	src, err := sourceFromConfig(cfg, watermark)
	if err != nil {
		return nil, err
	}

	triager, err := New(ctx, client, src, Options{
		Workers: cfg.Triage.Workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	for _, declared := range cfg.Sort {
		by, err := sorter.ParseAll(declared.By)
		if err != nil {
			return nil, fmt.Errorf("sort section %q: %w", declared.Section, err)
		}
		if err := triager.Order(ctx, declared.Section, by); err != nil {
			return nil, fmt.Errorf("sort section %q: %w", declared.Section, err)
		}
	}
	return triager, nil
}

func sourceFromConfig(cfg *config.Config, watermark source.Watermark) (source.Source, error) {
	switch cfg.Source.Kind {
	case "poll":
		opts := source.PollingOptions{OnlyIncomplete: cfg.Source.OnlyIncomplete}
		if cfg.Source.RepeatAfter != "" {
			repeat, err := timespan.Parse(cfg.Source.RepeatAfter)
			if err != nil {
				return nil, fmt.Errorf("parse repeat_after: %w", err)
			}
			opts.RepeatAfter = repeat
		}
		return source.NewPolling(cfg.Project.GID, opts), nil
	case "modified":
		return source.NewModifiedSince(cfg.Project.GID, source.ModifiedSinceOptions{
			Watermark: watermark,
		}), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}
