package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	CORSOrigins []string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	ResendAPIKey      string
	FromEmail         string
	NotifyInterval    time.Duration
	NotifyMaxAttempts int

	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment values win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "ocl")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("stats_cache_ttl", "60s")
	v.SetDefault("resend_api_key", "")
	v.SetDefault("from_email", "")
	v.SetDefault("notify_interval", "1m")
	v.SetDefault("notify_max_attempts", 5)
	v.SetDefault("seed_admin_email", "admin@ocl.com")
	v.SetDefault("seed_admin_name", "Default Admin")
	v.SetDefault("seed_admin_password", "")

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		MongoURI:          v.GetString("mongo_uri"),
		MongoDatabase:     v.GetString("mongo_database"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		StatsCacheTTL:     v.GetDuration("stats_cache_ttl"),
		ResendAPIKey:      v.GetString("resend_api_key"),
		FromEmail:         v.GetString("from_email"),
		NotifyInterval:    v.GetDuration("notify_interval"),
		NotifyMaxAttempts: v.GetInt("notify_max_attempts"),
		SeedAdminEmail:    strings.ToLower(strings.TrimSpace(v.GetString("seed_admin_email"))),
		SeedAdminName:     v.GetString("seed_admin_name"),
		SeedAdminPassword: v.GetString("seed_admin_password"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails on settings the service cannot start without. There is no
// fallback signing secret.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ResendAPIKey != "" && c.FromEmail == "" {
		errs = append(errs, errors.New("FROM_EMAIL is required when RESEND_API_KEY is set"))
	}
	if c.NotifyInterval <= 0 {
		errs = append(errs, errors.New("NOTIFY_INTERVAL must be positive"))
	}
	if c.NotifyMaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.SeedAdminPassword != "" && len(c.SeedAdminPassword) < 6 {
		errs = append(errs, errors.New("SEED_ADMIN_PASSWORD must be at least 6 characters long"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
