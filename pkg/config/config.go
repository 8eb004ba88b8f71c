// Package config loads the TOML configuration shared by the CLI and the
// HTTP service.
//
// The file lives at $WATERFALL_CONFIG, or $XDG_CONFIG_HOME/waterfall/config.toml,
// or ~/.config/waterfall/config.toml. A missing file yields [Default].
//
//	[render]
//	period  = "month"
//	formats = ["svg", "json"]
//	palette = "increase=#2e7d32,decrease=#c62828,total=#1565c0"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr  = ":8080"
//	store = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/chart"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/pipeline"
)

const appName = "waterfall"

// EnvConfig names the environment variable that overrides the config path.
const EnvConfig = "WATERFALL_CONFIG"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// RenderConfig holds pipeline defaults.
type RenderConfig struct {
	Period  string   `toml:"period"`
	Formats []string `toml:"formats"`
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Palette string   `toml:"palette"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend     string `toml:"backend"`
	Dir         string `toml:"dir"` // file backend; empty means the user cache dir
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	Store           string        `toml:"store"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Render: RenderConfig{
			Period:  "week",
			Formats: []string{pipeline.FormatSVG},
			Width:   pipeline.DefaultWidth,
			Height:  pipeline.DefaultHeight,
			Palette: chart.DefaultPalette.String(),
		},
		Cache: CacheConfig{
			Backend:     CacheFile,
			RedisPrefix: appName + ":",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Store:           StoreMemory,
			MongoDatabase:   appName,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. A missing file is an error only when
// mustExist is set. The result is validated.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !mustExist:
		// defaults only
	case errors.Is(err, fs.ErrNotExist):
		return nil, wferrors.Wrap(wferrors.ErrCodeFileNotFound, err, "config %s", path)
	case err != nil:
		return nil, wferrors.Wrap(wferrors.ErrCodeInvalidConfig, err, "read config %s", path)
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, wferrors.Wrap(wferrors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, wferrors.New(wferrors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("WATERFALL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("WATERFALL_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := getenv("WATERFALL_MONGO_URI"); v != "" {
		c.Server.MongoURI = v
	}
	if v := getenv("WATERFALL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	invalid := func(err error, section string) error {
		return wferrors.Wrap(wferrors.ErrCodeInvalidConfig, err, "[%s]", section)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return invalid(err, "log")
	}

	opts := c.Render.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return invalid(err, "render")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return invalid(errors.New("redis_url is required for the redis backend"), "cache")
		}
	default:
		return invalid(errors.New("backend must be one of: file, redis, none"), "cache")
	}

	switch c.Server.Store {
	case StoreMemory:
	case StoreMongo:
		if c.Server.MongoURI == "" || c.Server.MongoDatabase == "" {
			return invalid(errors.New("mongo_uri and mongo_database are required for the mongo store"), "server")
		}
	default:
		return invalid(errors.New("store must be one of: memory, mongo"), "server")
	}
	if c.Server.Addr == "" {
		return invalid(errors.New("addr is required"), "server")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid(errors.New("max_body_bytes must be positive"), "server")
	}
	return nil
}

// Options returns pipeline options carrying the render defaults.
func (r RenderConfig) Options() pipeline.Options {
	return pipeline.Options{
		Period:  r.Period,
		Formats: append([]string(nil), r.Formats...),
		Width:   r.Width,
		Height:  r.Height,
		Palette: r.Palette,
	}
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
