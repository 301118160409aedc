package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/ops-accountability/internal/data/db"
)

type Config struct {
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	DBDriver         string `env:"DB_DRIVER"         envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME"     envDefault:"enforcement"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE"  envDefault:"disable"`
	SQLitePath       string `env:"SQLITE_PATH"       envDefault:"enforcement.db"`
	AutoMigrate      bool   `env:"DB_AUTO_MIGRATE"   envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	NotifyChannel string `env:"NOTIFY_CHANNEL" envDefault:"enforcement.notifications"`

	HTTPAddr    string   `env:"HTTP_ADDR"    envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	ScoringConcurrency int           `env:"SCORING_CONCURRENCY" envDefault:"8"`
	LadderConcurrency  int           `env:"LADDER_CONCURRENCY"  envDefault:"8"`
	CarryConcurrency   int           `env:"CARRY_CONCURRENCY"   envDefault:"8"`
	BoundsCacheTTL     time.Duration `env:"BOUNDS_CACHE_TTL"    envDefault:"30m"`
	NotifyTimeout      time.Duration `env:"NOTIFY_TIMEOUT"      envDefault:"5s"`
	StoreTimeout       time.Duration `env:"STORE_TIMEOUT"       envDefault:"30s"`

	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"enforcement"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ScoringConcurrency < 1 {
		cfg.ScoringConcurrency = 1
	}
	if cfg.LadderConcurrency < 1 {
		cfg.LadderConcurrency = 1
	}
	if cfg.CarryConcurrency < 1 {
		cfg.CarryConcurrency = 1
	}
	return cfg, nil
}

func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:     c.DBDriver,
		Host:       c.PostgresHost,
		Port:       c.PostgresPort,
		User:       c.PostgresUser,
		Password:   c.PostgresPassword,
		Name:       c.PostgresName,
		SSLMode:    c.PostgresSSLMode,
		SQLitePath: c.SQLitePath,
	}
}
