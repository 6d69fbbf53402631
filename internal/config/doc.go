// Package config loads, normalizes, and validates claudepack's TOML
// configuration.
//
// Configuration is looked up from an explicit --config path, then
// ~/.config/claudepack/config.toml, then ./claudepack.toml. A missing file is
// fine: the embedded defaults describe a working build of the current upstream
// installer. All path fields are tilde-expanded and made absolute during load
// so downstream stages never deal with relative paths.
package config
