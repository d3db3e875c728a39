// Package config loads the settings of the wayfinder binaries from a YAML
// file overlaid with WAYFINDER_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/wayfinder"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WAYFINDER_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultSeries are the distro series a console knows about out of the box.
var DefaultSeries = []string{
	"precise", "quantal", "raring", "saucy", "trusty", "utopic", "vivid",
	"wily", "xenial", "yakkety", "zesty", "artful", "bionic", "cosmic",
	"disco", "centos7", "win2012r2", "win2016",
}

// Config holds every setting of the binaries.
type Config struct {
	wayfinder.Config `yaml:",inline" mapstructure:",squash"`

	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`

	Store string      `yaml:"store" mapstructure:"store"`
	File  FileConfig  `yaml:"file" mapstructure:"file"`
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`

	Persistence PersistenceConfig `yaml:"persistence" mapstructure:"persistence"`

	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`
	MCP  MCPConfig  `yaml:"mcp" mapstructure:"mcp"`
}

// FileConfig configures the file store.
type FileConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RedisConfig configures the redis store and session locks.
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

// PersistenceConfig configures the store middlewares.
type PersistenceConfig struct {
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
	// FallbackKeys are previous keys still accepted for decryption.
	FallbackKeys []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`
	// Redact lists query parameter patterns masked before saving.
	Redact []string `yaml:"redact" mapstructure:"redact"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `yaml:"transport" mapstructure:"transport"`
	Port      int    `yaml:"port" mapstructure:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Config: wayfinder.Config{
			BaseURL: "http://localhost:8080/",
			Series:  append([]string(nil), DefaultSeries...),
		},
		LogLevel:  "info",
		LogFormat: "text",
		Store:     StoreMemory,
		File:      FileConfig{Dir: ".wayfinder/sessions"},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "wayfinder:session:",
			LockTTL: 30 * time.Second,
		},
		HTTP: HTTPConfig{Port: 8080},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load reads the defaults, then path when it is not empty, then the
// WAYFINDER_* variables of environ.
func Load(path string, environ []string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// envKeys maps variable names, without the prefix, to nested config keys.
var envKeys = map[string][]string{
	"BASE_URL":                   {"base_url"},
	"SERIES":                     {"series"},
	"LOG_LEVEL":                  {"log_level"},
	"LOG_FORMAT":                 {"log_format"},
	"STORE":                      {"store"},
	"FILE_DIR":                   {"file", "dir"},
	"REDIS_ADDR":                 {"redis", "addr"},
	"REDIS_PASSWORD":             {"redis", "password"},
	"REDIS_DB":                   {"redis", "db"},
	"REDIS_PREFIX":               {"redis", "prefix"},
	"REDIS_TTL":                  {"redis", "ttl"},
	"REDIS_LOCK_TTL":             {"redis", "lock_ttl"},
	"PERSISTENCE_ENCRYPTION_KEY": {"persistence", "encryption_key"},
	"PERSISTENCE_FALLBACK_KEYS":  {"persistence", "fallback_keys"},
	"PERSISTENCE_REDACT":         {"persistence", "redact"},
	"HTTP_PORT":                  {"http", "port"},
	"MCP_TRANSPORT":              {"mcp", "transport"},
	"MCP_PORT":                   {"mcp", "port"},
}

// ApplyEnv overlays the WAYFINDER_* entries of environ ("KEY=value" pairs).
// Values are weakly typed: numbers, durations and comma separated lists are
// converted to the field types.
func (c *Config) ApplyEnv(environ []string) error {
	overlay := map[string]any{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		path, known := envKeys[strings.TrimPrefix(name, EnvPrefix)]
		if !known {
			continue
		}
		node := overlay
		for _, key := range path[:len(path)-1] {
			next, ok := node[key].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[key] = next
			}
			node = next
		}
		node[path[len(path)-1]] = value
	}
	if len(overlay) == 0 {
		return nil
	}
	// Lists from the environment replace the configured ones.
	if _, ok := overlay["series"]; ok {
		c.Series = nil
	}
	if p, ok := overlay["persistence"].(map[string]any); ok {
		if _, ok := p["fallback_keys"]; ok {
			c.Persistence.FallbackKeys = nil
		}
		if _, ok := p["redact"]; ok {
			c.Persistence.Redact = nil
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           c,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create env decoder: %w", err)
	}
	if err := decoder.Decode(overlay); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalidConfig)
	}
	if len(c.Series) == 0 {
		return fmt.Errorf("%w: series must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	return nil
}

// EncryptionKeys decodes the active and fallback keys. active is nil when
// encryption is disabled.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Persistence.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.Persistence.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range c.Persistence.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not base64: %w", ErrInvalidConfig, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption key must be 32 bytes, got %d", ErrInvalidConfig, len(key))
	}
	return key, nil
}
