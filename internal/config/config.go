// Package config provides configuration loading for todo.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultPath is the config file consulted when --config is not given.
var DefaultPath = filepath.Join(".todo", "config.yaml")

// Backend selects the storage implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMySQL  Backend = "mysql"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	switch v := Backend(strings.TrimSpace(string(text))); v {
	case BackendSQLite, BackendJSON, BackendMySQL:
		*b = v
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", string(text))
	}
}

// Config is the root configuration.
type Config struct {
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Log     LogConfig     `json:"log"     mapstructure:"log"`
	Display DisplayConfig `json:"display" mapstructure:"display"`
}

// StorageConfig describes where tasks are persisted.
type StorageConfig struct {
	Backend     Backend       `json:"backend"                mapstructure:"backend"`
	Path        string        `json:"path,omitempty"         mapstructure:"path"`
	DSN         string        `json:"dsn,omitempty"          mapstructure:"dsn"`
	BusyTimeout time.Duration `json:"busy_timeout,omitempty" mapstructure:"busy_timeout"`
}

// LogConfig describes the log file. An empty File disables file logging.
type LogConfig struct {
	File string `json:"file" mapstructure:"file"`
}

// DisplayConfig controls list rendering.
type DisplayConfig struct {
	Width int `json:"width" mapstructure:"width"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			BusyTimeout: 5 * time.Second,
		},
		Log:     LogConfig{File: filepath.Join("logs", "todo.log")},
		Display: DisplayConfig{Width: 60},
	}
}

// StoragePath returns the configured path or the backend's fixed default.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendJSON:
		return filepath.Join("data", "todo.json")
	default:
		return filepath.Join("data", "todo.db")
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("storage.backend", string(def.Storage.Backend))
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.dsn", def.Storage.DSN)
	v.SetDefault("storage.busy_timeout", def.Storage.BusyTimeout.String())
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("display.width", def.Display.Width)
}

// Load reads the config file at path into v and decodes the result.
// A missing file is only an error when required is set.
func Load(v *viper.Viper, path string, required bool) (Config, error) {
	SetDefaults(v)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) || required {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode validates the settings held by v and decodes them into a Config.
func Decode(v *viper.Viper) (Config, error) {
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the schema cannot express.
func (c Config) Validate() error {
	if c.Storage.Backend == BackendMySQL && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for the mysql backend")
	}
	if c.Storage.BusyTimeout < 0 {
		return fmt.Errorf("storage.busy_timeout must be >= 0")
	}
	return nil
}
