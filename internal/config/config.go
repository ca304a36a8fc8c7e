package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	EventsPrefix     string
	JWTSecret        string
	JWTTTL           time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	ActivityLimitMax int
	LogLevel         string
	LogFile          string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FAIRSHARE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "FairShare API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.prefix", "fairshare")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("auth.rate_window", "1m")
	v.SetDefault("activity.limit_max", 500)
	v.SetDefault("log.level", "info")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	ttl, err := parseDuration(v.GetString("jwt.ttl"), 7*24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("auth.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseDriver:   strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		EventsPrefix:     v.GetString("events.prefix"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTTTL:           ttl,
		AuthRateLimit:    v.GetInt("auth.rate_limit"),
		AuthRateWindow:   window,
		ActivityLimitMax: v.GetInt("activity.limit_max"),
		LogLevel:         strings.ToLower(v.GetString("log.level")),
		LogFile:          v.GetString("log.file"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 10
	}

	if cfg.ActivityLimitMax <= 0 {
		cfg.ActivityLimitMax = 500
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
