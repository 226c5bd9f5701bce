package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAsana(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAsana() error {
	if c.Asana.AccessToken == "" {
		if value, ok := os.LookupEnv("TRIAGE_ACCESS_TOKEN"); ok {
			c.Asana.AccessToken = value
		}
	}
	c.Asana.AccessToken = strings.TrimSpace(c.Asana.AccessToken)
	c.Asana.BaseURL = strings.TrimRight(strings.TrimSpace(c.Asana.BaseURL), "/")
	if c.Asana.BaseURL == "" {
		c.Asana.BaseURL = defaultBaseURL
	}
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	if c.Source.Kind == "" {
		c.Source.Kind = defaultSourceKind
	}
	c.Source.RepeatAfter = strings.TrimSpace(c.Source.RepeatAfter)
	c.Project.GID = strings.TrimSpace(c.Project.GID)
	return nil
}

func (c *Config) normalizeDaemon() error {
	var err error
	if strings.TrimSpace(c.Daemon.LockPath) == "" {
		c.Daemon.LockPath = defaultLockPath
	}
	if c.Daemon.LockPath, err = expandPath(c.Daemon.LockPath); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	if strings.TrimSpace(c.Daemon.CheckpointPath) == "" {
		c.Daemon.CheckpointPath = defaultCheckpointPath
	}
	if c.Daemon.CheckpointPath, err = expandPath(c.Daemon.CheckpointPath); err != nil {
		return fmt.Errorf("daemon.checkpoint_path: %w", err)
	}
	c.Daemon.SortInterval = strings.TrimSpace(c.Daemon.SortInterval)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if expanded, err := expandPath(c.Logging.LogDir); err == nil {
		c.Logging.LogDir = expanded
	}
}
