package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Addr            string        `mapstructure:"APP_ADDR"`
	Env             string        `mapstructure:"APP_ENV"` // development | production
	SQLitePath      string        `mapstructure:"SQLITE_PATH"`
	MigrationsDir   string        `mapstructure:"MIGRATIONS_DIR"`
	ReadPoolSize    int           `mapstructure:"SQLITE_READ_POOL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	NotifyQueue     string        `mapstructure:"NOTIFICATION_QUEUE"`
	ScanLockTTL     time.Duration `mapstructure:"SCAN_LOCK_TTL"`
	MetricsEnabled  bool          `mapstructure:"METRICS_ENABLED"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SQLITE_PATH", "receipter.db")
	v.SetDefault("MIGRATIONS_DIR", "")
	v.SetDefault("SQLITE_READ_POOL", 8)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("NOTIFICATION_QUEUE", "notifications:receipts")
	v.SetDefault("SCAN_LOCK_TTL", "5s")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")

	// Missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}
