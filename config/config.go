package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	WebPort                 int           `mapstructure:"WEB_PORT"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	TenantDir               string        `mapstructure:"TENANT_DIR"`
	TenantCacheSize         int           `mapstructure:"TENANT_CACHE_SIZE"`
	TenantWatch             bool          `mapstructure:"TENANT_WATCH"`
	LLMHost                 string        `mapstructure:"LLM_HOST"`
	LLMAPIKey               string        `mapstructure:"LLM_API_KEY"`
	DefaultModel            string        `mapstructure:"DEFAULT_MODEL"`
	LLMRequestTimeout       time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	MaxRetries              int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds       time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	LLMBackoffMaxSeconds    time.Duration `mapstructure:"LLM_BACKOFF_MAX_SECONDS"`
	LLMBackoffJitterRatio   float64       `mapstructure:"LLM_BACKOFF_JITTER_RATIO"`
	SessionStore            string        `mapstructure:"SESSION_STORE"`
	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	SessionCacheSize        int           `mapstructure:"SESSION_CACHE_SIZE"`
	RedisAddr               string        `mapstructure:"REDIS_ADDR"`
	RedisPassword           string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int           `mapstructure:"REDIS_DB"`
	RateLimitMessagesPerMin int           `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	CookieSecure            bool          `mapstructure:"COOKIE_SECURE"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TENANT_DIR", "./tenants")
	viper.SetDefault("TENANT_CACHE_SIZE", 128)
	viper.SetDefault("TENANT_WATCH", true)
	viper.SetDefault("LLM_HOST", "http://localhost:8080")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("DEFAULT_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 20)
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("RETRY_DELAY_SECONDS", 1)
	viper.SetDefault("LLM_BACKOFF_MAX_SECONDS", 8)
	viper.SetDefault("LLM_BACKOFF_JITTER_RATIO", 0.1)
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL", 24)
	viper.SetDefault("SESSION_CACHE_SIZE", 10000)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 20)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("COOKIE_SECURE", false)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.normalize()
	return &config
}

// normalize converts raw seconds/hours into durations and clamps values that
// would otherwise disable a component.
func (c *Config) normalize() {
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	if c.SessionStore != "redis" {
		c.SessionStore = "memory"
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	if c.TenantCacheSize < 1 {
		c.TenantCacheSize = 128
	}
	if c.SessionCacheSize < 1 {
		c.SessionCacheSize = 10000
	}
	c.TenantDir = strings.TrimSpace(c.TenantDir)
	c.DefaultModel = strings.TrimSpace(c.DefaultModel)

	// Convert seconds/hours to proper time.Duration
	c.LLMRequestTimeout = c.LLMRequestTimeout * time.Second
	c.RetryDelaySeconds = c.RetryDelaySeconds * time.Second
	c.LLMBackoffMaxSeconds = c.LLMBackoffMaxSeconds * time.Second
	c.SessionTTL = c.SessionTTL * time.Hour
}
