// Package config loads the flamechart configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/flamechart/config.toml
// unless a path is given explicitly. Every key is optional:
//
//	[view]
//	width = 1600
//	height = 800
//	dpr = 2
//	kind = "left-heavy"
//
//	[theme]
//	name = "dark"
//
//	[theme.colors]
//	selection_primary = "#ff8800"
//
//	[cache]
//	backend = "redis"   # file, redis or none
//	ttl = "72h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override values from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/render"
)

const appName = "flamechart"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	View   ViewConfig   `toml:"view"`
	Theme  ThemeConfig  `toml:"theme"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// ViewConfig holds default render dimensions. Row height is fixed.
type ViewConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	DPR    float64 `toml:"dpr"`
	Kind   string  `toml:"kind"`
}

// ThemeConfig selects a built-in theme and overrides some of its colors.
type ThemeConfig struct {
	Name   string       `toml:"name"`
	Colors render.Theme `toml:"colors"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		View:   ViewConfig{Width: 1200, Height: 600, DPR: 1, Kind: "default"},
		Theme:  ThemeConfig{Name: "light"},
		Cache:  CacheConfig{Backend: BackendFile, TTL: Duration{cache.TTLArtifact}, Redis: RedisConfig{Addr: "localhost:6379"}},
		Server: ServerConfig{Addr: ":8080", MaxUploadBytes: 64 << 20},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/flamechart/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/flamechart, falling back to
// ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration at path on top of [Default]. An empty path
// means [DefaultPath], which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML into cfg, keeping fields the data does not set, and
// validates the result. Unknown keys are an error.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q must be one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidView, "view size %dx%d must be positive", c.View.Width, c.View.Height)
	}
	if c.View.DPR <= 0 {
		return errors.New(errors.ErrCodeInvalidView, "view.dpr must be positive")
	}
	if _, err := c.ResolveTheme(); err != nil {
		return err
	}
	return nil
}

// ResolveTheme returns the named theme with the configured overrides.
func (c *Config) ResolveTheme() (render.Theme, error) {
	t, err := render.ThemeByName(c.Theme.Name)
	if err != nil {
		return render.Theme{}, err
	}
	return t.Merge(c.Theme.Colors), nil
}

// CacheDir returns the configured cache directory or the default one.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}
