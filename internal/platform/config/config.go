package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	HTTPPort   string        `env:"HTTP_PORT" envDefault:"3000"`
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"defaultsecret"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CSRFKey        string        `env:"CSRF_KEY"` // 32 bytes; empty disables CSRF protection

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DBName     string `env:"DB_NAME" envDefault:"taskhunt_web"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBConnStr  string

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ReaperInterval time.Duration `env:"REAPER_INTERVAL" envDefault:"10m"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

var AppConfig *Config

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	AppConfig = cfg
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendPostgres:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return fmt.Errorf("CSRF_KEY must be exactly 32 bytes, got %d", len(c.CSRFKey))
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.ReaperInterval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive")
	}
	return nil
}
