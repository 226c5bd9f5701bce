package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Asana contains credentials and connection settings for the Asana API.
type Asana struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
}

// Project identifies the project under triage.
type Project struct {
	GID string `toml:"gid"`
}

// Source controls how tasks are pulled from the project.
type Source struct {
	// Kind selects the source strategy: "poll" fetches every task in the
	// project, "modified" fetches only tasks changed since the last pass.
	Kind           string `toml:"kind"`
	RepeatAfter    string `toml:"repeat_after"`
	OnlyIncomplete bool   `toml:"only_incomplete"`
}

// Triage contains orchestrator tuning.
type Triage struct {
	// Workers bounds the per-task worker pool. Zero means a small multiple
	// of the available CPUs.
	Workers int `toml:"workers"`
}

// SectionSort declares that one section should be kept in a given order.
type SectionSort struct {
	Section string   `toml:"section"`
	By      []string `toml:"by"`
}

// Daemon contains settings used only by triaged.
type Daemon struct {
	LockPath       string `toml:"lock_path"`
	CheckpointPath string `toml:"checkpoint_path"`
	SortInterval   string `toml:"sort_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Config encapsulates all configuration values for triage.
//
// Configuration sections by subsystem:
//   - Asana: API credentials and base URL
//   - Project: the project under triage
//   - Source: task source strategy and polling cadence
//   - Triage: worker pool sizing
//   - Sort: declared section sort orders
//   - Daemon: lock file, checkpoint database, sort cadence
//   - Logging: log format, level, and output directory
type Config struct {
	Asana   Asana         `toml:"asana"`
	Project Project       `toml:"project"`
	Source  Source        `toml:"source"`
	Triage  Triage        `toml:"triage"`
	Sort    []SectionSort `toml:"sort"`
	Daemon  Daemon        `toml:"daemon"`
	Logging Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/triage/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("triage.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.LogDir}
	if c.Daemon.CheckpointPath != "" {
		dirs = append(dirs, filepath.Dir(c.Daemon.CheckpointPath))
	}
	if c.Daemon.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.Daemon.LockPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
