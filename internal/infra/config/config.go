// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Library  LibraryConfig  `yaml:"library"`
	Playback PlaybackConfig `yaml:"playback"`
	Audio    AudioConfig    `yaml:"audio"`
}

// StorageConfig represents state persistence configuration.
type StorageConfig struct {
	// Path to the state database. Empty means in-memory only (nothing
	// survives a restart); the player entry point fills in a per-user
	// default before opening.
	Path string `yaml:"path"`
}

// LibraryConfig represents library seeding and import configuration.
type LibraryConfig struct {
	// ImportDir is watched for dropped audio files; new files are added
	// to the library as local uploads. Empty disables the watcher.
	ImportDir string `yaml:"import_dir"`

	// Seed songs are added on first run, when no saved library exists.
	Seed []SeedSong `yaml:"seed" validate:"dive"`
}

// SeedSong represents one bundled library entry.
type SeedSong struct {
	ID     string `yaml:"id" validate:"required"`
	Title  string `yaml:"title" validate:"required"`
	Artist string `yaml:"artist"`
	Src    string `yaml:"src" validate:"required"`
	Cover  string `yaml:"cover"`
}

// PlaybackConfig represents playback engine configuration.
type PlaybackConfig struct {
	// ResetOnStart discards the saved queue and current song at boot
	// instead of restoring them.
	ResetOnStart bool `yaml:"reset_on_start"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	Output   string         `yaml:"output" default:"speaker" validate:"oneof=speaker null"`
	Settings map[string]any `yaml:"settings"`
}

// Load loads configuration from a YAML file.
// A missing file is not an error: the player runs fine on defaults.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config file")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BYTEMUSIC_STATE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("BYTEMUSIC_IMPORT_DIR"); v != "" {
		c.Library.ImportDir = v
	}
	if v := os.Getenv("BYTEMUSIC_AUDIO_OUTPUT"); v != "" {
		c.Audio.Output = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Seed ids must be unique; collisions would make library entries
	// indistinguishable.
	seen := make(map[string]struct{}, len(c.Library.Seed))
	for _, s := range c.Library.Seed {
		if _, dup := seen[s.ID]; dup {
			return errors.Newf("duplicate seed song id: %s", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return nil
}
