// Package config loads molt's runtime configuration. Settings layer in
// the usual order - built-in defaults, then an optional TOML file, then
// MOLT_* environment variables - and every setting maps to a command
// line flag, which wins over all of them.
package config
