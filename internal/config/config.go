package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Media    MediaConfig
	Logging  LoggingConfig
	Feed     FeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	SiteURL       string // absolute base for robots.txt and sitemap.xml
	Mode          string // gin mode: debug, release, test
	SessionSecret string
	CSRFEnabled   bool
	TemplatesDir  string
	StaticDir     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string // postgres, mysql, sqlite
	URL    string
}

// CacheConfig holds page cache configuration
type CacheConfig struct {
	RedisURL string // empty means in-process LRU
	Size     int
	IndexTTL time.Duration
}

// MediaConfig holds uploaded image storage configuration
type MediaConfig struct {
	Storage       string // local or minio
	Root          string
	URL           string
	MaxUploadSize int64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// FeedConfig holds listing configuration
type FeedConfig struct {
	PageSize int
}

// Load reads .env (if present), the optional config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/yatube")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("port"),
			SiteURL:       v.GetString("site_url"),
			Mode:          v.GetString("gin_mode"),
			SessionSecret: v.GetString("session_secret"),
			CSRFEnabled:   v.GetBool("csrf_enabled"),
			TemplatesDir:  v.GetString("templates_dir"),
			StaticDir:     v.GetString("static_dir"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database_driver"),
			URL:    v.GetString("database_url"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("redis_url"),
			Size:     v.GetInt("page_cache_size"),
			IndexTTL: v.GetDuration("index_cache_ttl"),
		},
		Media: MediaConfig{
			Storage:        v.GetString("media_storage"),
			Root:           v.GetString("media_root"),
			URL:            v.GetString("media_url"),
			MaxUploadSize:  v.GetInt64("max_upload_size"),
			MinioEndpoint:  v.GetString("minio_endpoint"),
			MinioAccessKey: v.GetString("minio_access_key"),
			MinioSecretKey: v.GetString("minio_secret_key"),
			MinioBucket:    v.GetString("minio_bucket"),
			MinioUseSSL:    v.GetBool("minio_use_ssl"),
			MinioPublicURL: v.GetString("minio_public_url"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Feed: FeedConfig{
			PageSize: v.GetInt("page_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("templates_dir", "./web/templates")
	v.SetDefault("static_dir", "./web/static")

	v.SetDefault("database_driver", "postgres")
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable")

	v.SetDefault("redis_url", "")
	v.SetDefault("page_cache_size", 500)
	v.SetDefault("index_cache_ttl", 20*time.Second)

	v.SetDefault("media_storage", "local")
	v.SetDefault("media_root", "./media")
	v.SetDefault("media_url", "/media/")
	v.SetDefault("max_upload_size", 10<<20)
	v.SetDefault("minio_bucket", "yatube")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("page_size", 10)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("database_driver must be one of postgres, mysql, sqlite (got %q)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database_url is required")
	}
	switch c.Media.Storage {
	case "local":
		if c.Media.Root == "" {
			return errors.New("media_root is required for local storage")
		}
	case "minio":
		if c.Media.MinioEndpoint == "" || c.Media.MinioBucket == "" {
			return errors.New("minio_endpoint and minio_bucket are required for minio storage")
		}
	default:
		return fmt.Errorf("media_storage must be local or minio (got %q)", c.Media.Storage)
	}
	if c.Feed.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}
	if c.Cache.IndexTTL <= 0 {
		return errors.New("index_cache_ttl must be positive")
	}
	if c.Cache.Size <= 0 {
		return errors.New("page_cache_size must be positive")
	}
	if c.Server.SessionSecret == "" {
		return errors.New("session_secret is required")
	}
	return nil
}
