package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres PostgresConfig

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Paystack struct {
		SecretKey   string        `env:"PAYSTACK_SECRET_KEY,required" validate:"required"`
		BaseURL     string        `env:"PAYSTACK_URL" envDefault:"https://api.paystack.co" validate:"url"`
		CallbackURL string        `env:"PAYSTACK_CALLBACK_URL" envDefault:"http://localhost:8080/api/v1/payments/paystack/callback" validate:"url"`
		Timeout     time.Duration `env:"PAYSTACK_TIMEOUT" envDefault:"10s" validate:"gt=0"`
		// In live mode the verify callback settles funding directly; otherwise the webhook does.
		LiveMode          bool    `env:"PAYSTACK_LIVE_MODE" envDefault:"false"`
		RequestsPerSecond float64 `env:"PAYSTACK_RPS" envDefault:"10" validate:"gt=0"`
	}

	Quiz struct {
		ProviderURL string        `env:"QUIZ_PROVIDER_URL" envDefault:"https://opentdb.com/api.php" validate:"url"`
		AnswerTTL   time.Duration `env:"QUIZ_ANSWER_TTL" envDefault:"30m" validate:"gt=0"`
		Timeout     time.Duration `env:"QUIZ_PROVIDER_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	}

	// Background sweeps
	Workers struct {
		LifecycleInterval time.Duration `env:"LIFECYCLE_SWEEP_INTERVAL" envDefault:"5m" validate:"gt=0"`
		WinnersInterval   time.Duration `env:"WINNERS_SWEEP_INTERVAL" envDefault:"5m" validate:"gt=0"`
		RecipientInterval time.Duration `env:"RECIPIENT_SWEEP_INTERVAL" envDefault:"10m" validate:"gt=0"`
		PayoutInterval    time.Duration `env:"PAYOUT_SWEEP_INTERVAL" envDefault:"1h" validate:"gt=0"`
		JobTimeout        time.Duration `env:"WORKER_JOB_TIMEOUT" envDefault:"2m" validate:"gt=0"`
	}

	Log struct {
		File       string `env:"LOG_FILE" envDefault:""`
		MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
		MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
		MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
	}
}

type PostgresConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database        string        `env:"POSTGRES_DB" envDefault:"giveaway"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// GetDSN builds a lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// RedisAddr returns host:port of the redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine: production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
