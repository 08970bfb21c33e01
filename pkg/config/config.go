package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/molt/pkg/errors"
)

// DefaultPath is where Load looks for a config file when none is given.
const DefaultPath = "/etc/molt/config.toml"

// Config is the full runtime configuration. Every field has a flag of
// the same name on the migrate command.
type Config struct {
	// DatastorePath is the datastore's current link.
	DatastorePath string `koanf:"datastore-path" toml:"datastore-path"`
	// RootPath is the trusted root metadata baked into the image.
	RootPath string `koanf:"root-path" toml:"root-path"`
	// MetadataDirectory holds the update repository's signed metadata.
	MetadataDirectory string `koanf:"metadata-directory" toml:"metadata-directory"`
	// MigrationDirectory holds the update repository's target files.
	MigrationDirectory string `koanf:"migration-directory" toml:"migration-directory"`
	// WorkingDirectory hosts per-run workspaces. Empty means the
	// system temp directory.
	WorkingDirectory string `koanf:"working-directory" toml:"working-directory"`
	// OSRelease is the os-release file queried for the built-in
	// target version.
	OSRelease string `koanf:"os-release" toml:"os-release"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `koanf:"log-level" toml:"log-level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatastorePath:      "/var/lib/molt/datastore/current",
		RootPath:           "/usr/share/molt/root.json",
		MetadataDirectory:  "/var/lib/molt/repository/metadata",
		MigrationDirectory: "/var/lib/molt/repository/targets",
		WorkingDirectory:   "",
		OSRelease:          "/etc/os-release",
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, the TOML file at path,
// and MOLT_* environment variables, in that order. An empty path means
// DefaultPath, which is allowed to be absent; a path given explicitly
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"datastore-path":      defaults.DatastorePath,
		"root-path":           defaults.RootPath,
		"metadata-directory":  defaults.MetadataDirectory,
		"migration-directory": defaults.MigrationDirectory,
		"working-directory":   defaults.WorkingDirectory,
		"os-release":          defaults.OSRelease,
		"log-level":           defaults.LogLevel,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path)
	}

	if err := k.Load(env.Provider("MOLT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MOLT_")), "_", "-")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}
	return &cfg, nil
}
