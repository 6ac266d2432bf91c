// Package config loads, normalizes, and validates topicsweep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the DATA_DIR and MODEL_DIR
// environment fallbacks exactly once. The Config type centralizes every knob
// the CLI, trainer, and scorer need so the core packages never consult the
// environment themselves.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
