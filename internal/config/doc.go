// Package config loads, normalizes, and validates the minute configuration.
//
// Configuration lives in a TOML file (default ~/.config/minute/config.toml,
// or ./minute.toml for project-local setups). Defaults are applied before
// parsing so an absent file still yields a working configuration; all path
// fields are tilde-expanded and made absolute during normalization.
package config
