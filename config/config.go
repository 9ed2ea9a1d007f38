package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL       string `env:"REDIS_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	MetricsPort   string `env:"METRICS_PORT" envDefault:"9090"`
	StatsSchedule string `env:"STATS_SCHEDULE" envDefault:"@every 1m" validate:"required"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"min=1m,max=720h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`

	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"8" validate:"min=8,max=128"`
	HashWorkers       int `env:"HASH_WORKERS" envDefault:"4" validate:"min=1,max=256"`

	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536" validate:"min=8192"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS" envDefault:"1" validate:"min=1,max=10"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"4" validate:"min=1,max=255"`

	LoginMaxFailures int           `env:"LOGIN_MAX_FAILURES" envDefault:"7" validate:"min=1,max=100"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m" validate:"min=1s"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_DOTENV_INVALID").Wrapf(err, "load .env")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, oops.Code("CONFIG_ENV_INVALID").Wrapf(err, "parse env")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "invalid config")
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
