package config

import (
	"errors"
	"fmt"
	"strings"

	"triage/internal/timespan"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAsana(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTriage(); err != nil {
		return err
	}
	if err := c.validateSort(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAsana() error {
	if c.Asana.AccessToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/triage/config.toml"
		}
		return fmt.Errorf("asana.access_token is required. Set TRIAGE_ACCESS_TOKEN env var or edit %s (create with 'triage config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Project.GID == "" {
		return errors.New("project.gid must be set")
	}
	switch c.Source.Kind {
	case "poll", "modified":
	default:
		return fmt.Errorf("source.kind must be \"poll\" or \"modified\", got %q", c.Source.Kind)
	}
	if c.Source.RepeatAfter != "" {
		if _, err := timespan.Parse(c.Source.RepeatAfter); err != nil {
			return fmt.Errorf("source.repeat_after: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTriage() error {
	if c.Triage.Workers < 0 {
		return errors.New("triage.workers must not be negative")
	}
	return nil
}

func (c *Config) validateSort() error {
	seen := make(map[string]struct{}, len(c.Sort))
	for i, entry := range c.Sort {
		if strings.TrimSpace(entry.Section) == "" {
			return fmt.Errorf("sort[%d].section must be set", i)
		}
		if _, ok := seen[entry.Section]; ok {
			return fmt.Errorf("sort[%d]: duplicate entry for section %q", i, entry.Section)
		}
		seen[entry.Section] = struct{}{}
		if len(entry.By) == 0 {
			return fmt.Errorf("sort[%d].by must list at least one sorter", i)
		}
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.SortInterval != "" {
		if _, err := timespan.Parse(c.Daemon.SortInterval); err != nil {
			return fmt.Errorf("daemon.sort_interval: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
