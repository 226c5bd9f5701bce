// Package logging constructs the slog loggers used across triage.
//
// Log output is the sole observability surface for the engine: skipped
// operations surface as warnings and per-task failures as errors, so every
// component receives a logger tagged with its component name and emits
// structured attributes using the field constants defined here.
package logging
