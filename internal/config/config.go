package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Bank sources understood by the bootstrap.
const (
	BankSourceFile     = "file"
	BankSourcePostgres = "postgres"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"subject-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"10s"`
	DefaultTheme            string        `env:"DEFAULT_THEME" envDefault:"light"`

	Quiz     Quiz
	Bank     Bank
	Postgres Postgres
	Redis    Redis
}

// Quiz groups the session constants. They are fixed per process.
type Quiz struct {
	TotalDuration time.Duration `env:"QUIZ_TOTAL_DURATION" envDefault:"3000s"`
	QuestionLimit int           `env:"QUIZ_QUESTION_LIMIT" envDefault:"25"`
	TickInterval  time.Duration `env:"QUIZ_TICK_INTERVAL" envDefault:"1s"`
}

// Bank selects where subject question banks come from.
type Bank struct {
	Source   string        `env:"BANK_SOURCE" envDefault:"file"`
	Dir      string        `env:"BANK_DIR" envDefault:"banks"`
	CacheTTL time.Duration `env:"BANK_CACHE_TTL" envDefault:"10m"`
}

// Postgres captures connection info for the SQL bank store. Only read when BANK_SOURCE=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"4"`
}

// Redis holds bank cache configuration. An empty address disables caching.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"4"`
}

// TotalSeconds is the countdown start value of every session.
func (q Quiz) TotalSeconds() int {
	return int(q.TotalDuration / time.Second)
}

// DSN builds the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the quiz cannot run with.
func (c *App) Validate() error {
	if c.Quiz.TotalSeconds() <= 0 {
		return fmt.Errorf("QUIZ_TOTAL_DURATION must be at least 1s")
	}
	if c.Quiz.QuestionLimit <= 0 {
		return fmt.Errorf("QUIZ_QUESTION_LIMIT must be positive")
	}
	if c.Quiz.TickInterval <= 0 {
		return fmt.Errorf("QUIZ_TICK_INTERVAL must be positive")
	}
	switch c.Bank.Source {
	case BankSourceFile:
		if c.Bank.Dir == "" {
			return fmt.Errorf("BANK_DIR is required for file banks")
		}
	case BankSourcePostgres:
		if c.Postgres.User == "" || c.Postgres.Database == "" {
			return fmt.Errorf("PG_USER and PG_DATABASE are required for postgres banks")
		}
	default:
		return fmt.Errorf("unknown BANK_SOURCE %q", c.Bank.Source)
	}
	if c.DefaultTheme != "light" && c.DefaultTheme != "dark" {
		return fmt.Errorf("DEFAULT_THEME must be light or dark")
	}
	return nil
}
