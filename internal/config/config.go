// Package config loads the service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Port   string
	AppEnv string

	DatabaseDriver string
	DatabaseURL    string
	QueryTimeout   time.Duration

	ImageStorage    string
	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64

	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Prefix           string
	S3PublicURL        string

	RedisURL string
	CacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "catalog.db")
	v.SetDefault("QUERY_TIMEOUT", 3*time.Second)
	v.SetDefault("IMAGE_STORAGE", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", int64(10<<20))
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("AWS_S3_BUCKET", "")
	v.SetDefault("AWS_S3_PREFIX", "products")
	v.SetDefault("AWS_S3_PUBLIC_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", time.Minute)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("TRUST_PROXY", false)
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:   v.GetString("PORT"),
		AppEnv: strings.ToLower(v.GetString("APP_ENV")),

		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		QueryTimeout:   v.GetDuration("QUERY_TIMEOUT"),

		ImageStorage:    strings.ToLower(v.GetString("IMAGE_STORAGE")),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: v.GetString("UPLOAD_URL_PREFIX"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSEndpoint:        v.GetString("AWS_ENDPOINT"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:           v.GetString("AWS_S3_BUCKET"),
		S3Prefix:           v.GetString("AWS_S3_PREFIX"),
		S3PublicURL:        v.GetString("AWS_S3_PUBLIC_URL"),

		RedisURL: v.GetString("REDIS_URL"),
		CacheTTL: v.GetDuration("CACHE_TTL"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		TrustProxy:     v.GetBool("TRUST_PROXY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.ImageStorage {
	case StorageLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local image storage")
		}
		if strings.Trim(c.UploadURLPrefix, "/") == "" {
			return fmt.Errorf("UPLOAD_URL_PREFIX must name a path below /, got %q", c.UploadURLPrefix)
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required for s3 image storage")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}

	// A bare number is read as nanoseconds; durations need a unit suffix.
	if c.QueryTimeout < time.Millisecond {
		return fmt.Errorf("QUERY_TIMEOUT %v is too short, use a unit such as 3s", c.QueryTimeout)
	}
	if c.CacheTTL < time.Millisecond {
		return fmt.Errorf("CACHE_TTL %v is too short, use a unit such as 1m", c.CacheTTL)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
