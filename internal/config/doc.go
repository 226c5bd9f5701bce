// Package config loads, normalizes, and validates triage configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRIAGE_ACCESS_TOKEN. The Config type centralizes every knob the daemon and
// CLI need: API credentials, the project under triage, task source behavior,
// worker counts, section sort orders, and log settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
