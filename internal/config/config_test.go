package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("INDEX_CACHE_TTL", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Feed.PageSize)
	assert.Equal(t, 45*time.Second, cfg.Cache.IndexTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Media.Storage)
	assert.True(t, cfg.Server.CSRFEnabled)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, 20*time.Second, cfg.Cache.IndexTTL)
	assert.Equal(t, "/media/", cfg.Media.URL)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxUploadSize)
	assert.Equal(t, "http://localhost:8080", cfg.Server.SiteURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{SessionSecret: "s"},
			Database: DatabaseConfig{Driver: "postgres", URL: "postgres://localhost/yatube"},
			Cache:    CacheConfig{Size: 10, IndexTTL: time.Second},
			Media:    MediaConfig{Storage: "local", Root: "./media"},
			Feed:     FeedConfig{PageSize: 10},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"missing url", func(c *Config) { c.Database.URL = "" }},
		{"unknown storage", func(c *Config) { c.Media.Storage = "s3" }},
		{"minio without endpoint", func(c *Config) { c.Media.Storage = "minio" }},
		{"zero page size", func(c *Config) { c.Feed.PageSize = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.IndexTTL = 0 }},
		{"empty secret", func(c *Config) { c.Server.SessionSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
