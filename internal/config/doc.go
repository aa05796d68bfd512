// Package config loads, normalizes, and validates bidslite configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BIDSLITE_PIPELINE_NAME. The Config type centralizes the dataset, layout,
// scanning, validation, and logging knobs the CLI needs so every command
// starts from the same settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
