// Package config loads and saves the locknote configuration file.
//
// The file is TOML, by default ~/.config/locknote/config.toml. When it does
// not exist a default configuration with a freshly generated encryption key
// is written, so the first run works without any setup.
//
// Environment overrides (never written back):
//   - LOCKNOTE_CONFIG: config file path
//   - LOCKNOTE_KEY: encryption key
package config
