// Package config loads brushkit settings from an optional YAML file and the
// environment.
package config

import (
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

type (
	Config struct {
		HTTP      `yaml:"http"`
		Resources `yaml:"resources"`
		Favorites `yaml:"favorites"`
		Thumbnail `yaml:"thumbnail"`
		Log       `yaml:"log"`
	}

	HTTP struct {
		Addr string `yaml:"addr" env:"HTTP_ADDR"`
	}

	// Resources locates the preset save location and the tag/blacklist
	// index.
	Resources struct {
		Dir   string `yaml:"dir" env:"RESOURCE_DIR"`
		Index string `yaml:"index" env:"RESOURCE_INDEX"`
	}

	Favorites struct {
		File string `yaml:"file" env:"FAVORITES_FILE"`
		Tag  string `yaml:"tag" env:"FAVORITE_TAG"`
	}

	Thumbnail struct {
		Size int `yaml:"size" env:"THUMBNAIL_SIZE"`
	}

	Log struct {
		Verbosity int `yaml:"verbosity" env:"LOG_VERBOSITY"`
	}
)

// Default returns the settings used when nothing overrides them. Paths are
// relative to dataDir.
func Default(dataDir string) *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.Resources.Dir = filepath.Join(dataDir, "paintoppresets")
	cfg.Resources.Index = filepath.Join(dataDir, "resources.json")
	cfg.Favorites.File = filepath.Join(dataDir, "favorites.json")
	cfg.Favorites.Tag = "Favorites"
	cfg.Thumbnail.Size = 200
	return cfg
}

// Load applies the YAML file at path, if any, then the environment on top
// of the defaults.
func Load(path, dataDir string) (*Config, error) {
	cfg := Default(dataDir)
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Resources.Dir == "" {
		return errors.New("resource directory is empty")
	}
	if c.Thumbnail.Size <= 0 {
		return errors.Errorf("thumbnail size must be positive, got %d", c.Thumbnail.Size)
	}
	return nil
}

// Usage describes the environment variables Load reads.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
