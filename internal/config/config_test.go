package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Contains(t, cfg.Series, "xenial")
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
base_url: https://jujucharms.com/
series: [trusty, xenial]
log_level: debug
store: redis
redis:
  addr: redis:6379
  db: 2
  ttl: 24h
grammar:
  roots: [about, new]
  grandfathered_root: ""
  profile_sections: [settings]
  gui_sections: [inspector, machines]
  delimiters: {search: q, user: u, gui: i}
  store_root: store
http:
  port: 9000
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://jujucharms.com/", cfg.BaseURL)
	assert.Equal(t, []string{"trusty", "xenial"}, cfg.Series)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "wayfinder:session:", cfg.Redis.Prefix, "defaults survive partial sections")
	assert.Equal(t, 9000, cfg.HTTP.Port)
	require.NotNil(t, cfg.Grammar)
	assert.Equal(t, []string{"about", "new"}, cfg.Grammar.Roots)
	assert.Empty(t, cfg.Grammar.GrandfatheredRoot)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "series: [unterminated"), nil)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	path := writeFile(t, "series: [precise]\nhttp:\n  port: 9000\n")
	cfg, err := Load(path, []string{
		"HOME=/root",
		"WAYFINDER_SERIES=trusty,xenial",
		"WAYFINDER_STORE=file",
		"WAYFINDER_FILE_DIR=/var/lib/wayfinder",
		"WAYFINDER_REDIS_DB=3",
		"WAYFINDER_REDIS_LOCK_TTL=5s",
		"WAYFINDER_PERSISTENCE_REDACT=token,secret_*",
		"WAYFINDER_UNKNOWN=ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"trusty", "xenial"}, cfg.Series)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "/var/lib/wayfinder", cfg.File.Dir)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, []string{"token", "secret_*"}, cfg.Persistence.Redact)
	assert.Equal(t, 9000, cfg.HTTP.Port)
}

func TestApplyEnv_BadValue(t *testing.T) {
	_, err := Load("", []string{"WAYFINDER_HTTP_PORT=eighty"})
	assert.ErrorContains(t, err, "failed to apply environment")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"base url":   func(c *Config) { c.BaseURL = "" },
		"series":     func(c *Config) { c.Series = nil },
		"store":      func(c *Config) { c.Store = "sqlite" },
		"log format": func(c *Config) { c.LogFormat = "xml" },
		"key":        func(c *Config) { c.Persistence.EncryptionKey = "c2hvcnQ=" },
		"base64":     func(c *Config) { c.Persistence.EncryptionKey = "%%%" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestEncryptionKeys(t *testing.T) {
	cfg := Default()
	active, fallback, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", 32)))
	cfg.Persistence.EncryptionKey = key
	cfg.Persistence.FallbackKeys = []string{old}

	active, fallback, err = cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Equal(t, []byte(strings.Repeat("k", 32)), active)
	assert.Equal(t, [][]byte{[]byte(strings.Repeat("o", 32))}, fallback)
}
