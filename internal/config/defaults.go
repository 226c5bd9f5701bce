package config

const (
	defaultBaseURL        = "https://app.asana.com/api/1.0"
	defaultSourceKind     = "poll"
	defaultLockPath       = "~/.local/share/triage/triaged.lock"
	defaultCheckpointPath = "~/.local/share/triage/checkpoints.db"
	defaultSortInterval   = "15m"
	defaultLogDir         = "~/.local/share/triage/logs"
	defaultLogFormat      = "text"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Asana: Asana{
			BaseURL: defaultBaseURL,
		},
		Source: Source{
			Kind:           defaultSourceKind,
			OnlyIncomplete: true,
		},
		Daemon: Daemon{
			LockPath:       defaultLockPath,
			CheckpointPath: defaultCheckpointPath,
			SortInterval:   defaultSortInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			LogDir: defaultLogDir,
		},
	}
}
