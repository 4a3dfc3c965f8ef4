// Package config loads, normalizes, and validates playden configuration.
//
// Configuration is a TOML file (default ~/.config/playden/config.toml) with
// defaults for every field, so a missing file yields a runnable config. Path
// fields are tilde-expanded and made absolute during Load. Validation errors
// name the offending key so users can fix the file directly.
package config
