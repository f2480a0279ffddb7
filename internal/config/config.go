package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxConns        int    `yaml:"max_conns"`
	MaxIdle         int    `yaml:"max_idle"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config planora API server configuration.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RSVP struct {
		TokenSecret   string `yaml:"token_secret"`
		TokenTTLDays  int    `yaml:"token_ttl_days"`
		PublicBaseURL string `yaml:"public_base_url"` // prefix for guest RSVP links
	} `yaml:"rsvp"`
	RateLimit struct {
		// Token bucket per client IP on the public RSVP endpoints.
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Providers struct {
		TimeoutSeconds int `yaml:"timeout_seconds"` // outbound email/WhatsApp/OAuth calls
	} `yaml:"providers"`
	OAuth struct {
		GoogleClientID     string `yaml:"google_client_id"`
		GoogleClientSecret string `yaml:"google_client_secret"`
		GoogleRedirectURL  string `yaml:"google_redirect_url"`
	} `yaml:"oauth"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load builds the configuration: an optional YAML file named by
// PLANORA_CONFIG first, then env vars override.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("PLANORA_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", defStr(cfg.HTTP.Addr, ":8080"))

	cfg.Database.Host = getEnv("DB_HOST", defStr(cfg.Database.Host, "localhost"))
	cfg.Database.Port = parseInt(getEnv("DB_PORT", ""), defInt(cfg.Database.Port, 5432))
	cfg.Database.User = getEnv("DB_USER", defStr(cfg.Database.User, "postgres"))
	cfg.Database.Password = getEnv("DB_PASSWORD", defStr(cfg.Database.Password, "postgres"))
	cfg.Database.Database = getEnv("DB_NAME", defStr(cfg.Database.Database, "planora"))
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", defStr(cfg.Database.SSLMode, "disable"))
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", ""), defInt(cfg.Database.MaxConns, 20))
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", ""), defInt(cfg.Database.MaxIdle, 5))
	cfg.Database.ConnMaxLifetime = parseInt(getEnv("DB_CONN_MAX_LIFETIME", ""), defInt(cfg.Database.ConnMaxLifetime, 1800))

	cfg.Redis.Addr = getEnv("REDIS_ADDR", defStr(cfg.Redis.Addr, "localhost:6379"))
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", ""), cfg.Redis.DB)

	cfg.RSVP.TokenSecret = getEnv("RSVP_TOKEN_SECRET", cfg.RSVP.TokenSecret)
	cfg.RSVP.TokenTTLDays = parseInt(getEnv("RSVP_TOKEN_TTL_DAYS", ""), defInt(cfg.RSVP.TokenTTLDays, 90))
	cfg.RSVP.PublicBaseURL = getEnv("RSVP_PUBLIC_BASE_URL", defStr(cfg.RSVP.PublicBaseURL, "http://localhost:8080"))

	cfg.RateLimit.PerSecond = parseFloat(getEnv("RATE_LIMIT_PER_SECOND", ""), defFloat(cfg.RateLimit.PerSecond, 5))
	cfg.RateLimit.Burst = parseInt(getEnv("RATE_LIMIT_BURST", ""), defInt(cfg.RateLimit.Burst, 20))

	cfg.Providers.TimeoutSeconds = parseInt(getEnv("PROVIDER_TIMEOUT_SECONDS", ""), defInt(cfg.Providers.TimeoutSeconds, 15))

	cfg.OAuth.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", cfg.OAuth.GoogleClientID)
	cfg.OAuth.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.OAuth.GoogleClientSecret)
	cfg.OAuth.GoogleRedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.OAuth.GoogleRedirectURL)

	cfg.Log.Level = getEnv("LOG_LEVEL", defStr(cfg.Log.Level, "info"))
	cfg.Log.Format = getEnv("LOG_FORMAT", defStr(cfg.Log.Format, "json"))

	if cfg.RSVP.TokenSecret == "" {
		return nil, fmt.Errorf("RSVP_TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func defStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func defFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
