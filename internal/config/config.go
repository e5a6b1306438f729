package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"squash/internal/processor"
	"squash/pkg/assetkind"
)

// Targets selects which categories a run optimizes.
type Targets struct {
	DMI bool `toml:"dmi"`
	OGG bool `toml:"ogg"`
}

// Logging configures the slog logger.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds run defaults. Flags given on the command line override it.
type Config struct {
	Targets  Targets `toml:"targets"`
	Threads  int     `toml:"threads"`
	Fast     bool    `toml:"fast"`
	Progress bool    `toml:"progress"`
	Logging  Logging `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Threads:  processor.DefaultThreads(),
		Progress: true,
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "squash", "config.toml"), nil
}

// Load decodes the TOML file at path over Default. An empty path means
// DefaultPath, which may be absent. An explicit path must exist. It returns
// the resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &cfg, "", false, nil
		}
		path = p
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &cfg, path, false, nil
		}
		return nil, path, false, processor.ConfigError("open config", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, path, false, processor.ConfigError("parse config "+path, err)
	}

	cfg.Normalize()
	return &cfg, path, true, nil
}

// Normalize lowercases and defaults the logging settings.
func (c *Config) Normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "warning":
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate reports settings that would keep any task from starting.
func (c *Config) Validate() error {
	if c.Enabled().Empty() {
		return processor.ConfigError("validate config", errors.New("select at least one target: --dmi or --ogg"))
	}
	if c.Threads < 1 {
		return processor.ConfigError("validate config", fmt.Errorf("threads must be at least 1, got %d", c.Threads))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return processor.ConfigError("validate config", fmt.Errorf("unsupported log format %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return processor.ConfigError("validate config", fmt.Errorf("unsupported log level %q", c.Logging.Level))
	}
	return nil
}

// Enabled converts Targets to the category set used by discovery.
func (c *Config) Enabled() assetkind.Set {
	return assetkind.Set{Raster: c.Targets.DMI, Audio: c.Targets.OGG}
}
