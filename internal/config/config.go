package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
// Values are populated from .soundbyte.yaml, SOUNDBYTE_* env vars and defaults.
type Config struct {
	API      APIConfig     `mapstructure:"api"`
	Snapshot string        `mapstructure:"snapshot"`
	Storage  StorageConfig `mapstructure:"storage"`
	Trends   TrendsConfig  `mapstructure:"trends"`
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
	SiteURL  string        `mapstructure:"site_url"`
}

// APIConfig points at the backend that serves entries
type APIConfig struct {
	URL           string        `mapstructure:"url"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PageSize      int           `mapstructure:"page_size"`
}

// StorageConfig selects the durable store for collections
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

// TrendsConfig sizes the trend windows
type TrendsConfig struct {
	Days       int `mapstructure:"days"`
	Hot        int `mapstructure:"hot"`
	RecentDays int `mapstructure:"recent_days"`
	TopTags    int `mapstructure:"top_tags"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Storage backends
const (
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:3000/api")
	v.SetDefault("api.health_timeout", 3*time.Second)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.page_size", 200)
	v.SetDefault("snapshot", "")
	v.SetDefault("storage.backend", BackendDisk)
	v.SetDefault("storage.path", "~/.soundbyte")
	v.SetDefault("storage.key", "soundbyte-collections")
	v.SetDefault("trends.days", 14)
	v.SetDefault("trends.hot", 10)
	v.SetDefault("trends.recent_days", 3)
	v.SetDefault("trends.top_tags", 20)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("site_url", "https://ulovemusic2023.github.io/soundbyte/")
}

// Load reads configuration from the given file (or .soundbyte.yaml in the
// working directory, then the home directory) layered under SOUNDBYTE_* env vars.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".soundbyte")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("SOUNDBYTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	expanded, err := homedir.Expand(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("expand storage path: %w", err)
	}
	cfg.Storage.Path = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that values are usable
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendDisk, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != BackendMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage path is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key is required")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api page size must be positive, got %d", c.API.PageSize)
	}
	if c.Trends.Days <= 0 || c.Trends.Hot <= 0 || c.Trends.RecentDays <= 0 || c.Trends.TopTags <= 0 {
		return errors.New("trend window sizes must be positive")
	}
	return nil
}
