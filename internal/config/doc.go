// Package config loads, normalizes, and validates tierlink configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TIERLINK_DATABASE. The Config type centralizes the matching defaults, the
// normalizer noise list, logging settings and the run history database, so the
// CLI can discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
