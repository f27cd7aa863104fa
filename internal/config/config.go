// Package config loads regpatch settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/regpatch/internal/backup"
	"github.com/joshuapare/regpatch/internal/verify"
)

// DefaultPath is read when neither --config nor EnvPath names a file.
const DefaultPath = "regpatch.yaml"

// EnvPath overrides DefaultPath.
const EnvPath = "REGPATCH_CONFIG"

// DefaultArchivePath is used when no archive is given on the command line.
const DefaultArchivePath = "./regulation.bin"

// Config holds all operator settings.
type Config struct {
	ArchivePath   string  `yaml:"archive_path"`
	BackupSuffix  string  `yaml:"backup_suffix"`
	LayoutProfile string  `yaml:"layout_profile"` // empty uses the built-in table
	Tolerance     float64 `yaml:"tolerance"`
	VerifyAll     bool    `yaml:"verify_all"`
	Lock          bool    `yaml:"lock"`
	LogLevel      string  `yaml:"log_level"`
	LogFile       string  `yaml:"log_file"`
	LogFormat     string  `yaml:"log_format"` // text or json
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		ArchivePath:  DefaultArchivePath,
		BackupSuffix: backup.DefaultSuffix,
		Tolerance:    verify.DefaultTolerance,
		Lock:         true,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// Load reads config from path over the defaults. A missing file yields the
// defaults unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve picks the config file: an explicit path (required to exist), then
// $REGPATCH_CONFIG (required), then DefaultPath (optional).
func Resolve(explicit string) (Config, error) {
	if explicit != "" {
		return Load(explicit, true)
	}
	if p := os.Getenv(EnvPath); p != "" {
		return Load(p, true)
	}
	return Load(DefaultPath, false)
}

// Validate rejects values that cannot work.
func (c Config) Validate() error {
	if c.ArchivePath == "" {
		return errors.New("archive_path must not be empty")
	}
	if c.BackupSuffix == "" {
		return errors.New("backup_suffix must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in (0, 1), got %g", c.Tolerance)
	}
	return nil
}
