package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Pricing  PricingConfig  `envPrefix:"PRICING_"`
	Admin    AdminConfig    `envPrefix:"ADMIN_"`
	CRM      CRMConfig      `envPrefix:"CRM_"`
	Stats    StatsConfig    `envPrefix:"STATS_"`
}

type TelegramConfig struct {
	// Token is optional: without it only the HTTP API is served.
	Token string `env:"TOKEN"`
	Debug bool   `env:"DEBUG" envDefault:"false"`
	// FrameInterval throttles message edits during the price count-up.
	FrameInterval time.Duration `env:"FRAME_INTERVAL" envDefault:"300ms"`
	RateLimit     int64         `env:"RATE_LIMIT" envDefault:"20"`
	RateWindow    time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RateCapacity    int           `env:"RATE_CAPACITY" envDefault:"30"`
	RateRefill      time.Duration `env:"RATE_REFILL" envDefault:"1m"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR,required"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST,required"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,required"`
	Password        string        `env:"PASSWORD,required"`
	Name            string        `env:"NAME,required"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
}

type PricingConfig struct {
	// Toman per square meter of cabinet surface.
	BasePricePerSqm int64         `env:"BASE_PRICE_PER_SQM" envDefault:"18000000"`
	AnimationTime   time.Duration `env:"ANIMATION_TIME" envDefault:"1200ms"`
}

type AdminConfig struct {
	IDs       []int64 `env:"IDS" envSeparator:","`
	ChannelID int64   `env:"CHANNEL_ID"`
	ReportDir string  `env:"REPORT_DIR" envDefault:"reports"`
}

type CRMConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// StatsConfig holds the hero statistics baseline; live counters from the
// database are added on top.
type StatsConfig struct {
	ProjectsBase  int64         `env:"PROJECTS_BASE" envDefault:"850"`
	ClientsBase   int64         `env:"CLIENTS_BASE" envDefault:"600"`
	FoundedYear   int           `env:"FOUNDED_YEAR" envDefault:"2012"`
	AnimationTime time.Duration `env:"ANIMATION_TIME" envDefault:"2s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPricing reads only the PRICING_ variables, for commands that do not
// talk to Redis or Postgres.
func LoadPricing() (PricingConfig, error) {
	var cfg PricingConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PRICING_"}); err != nil {
		return PricingConfig{}, fmt.Errorf("failed to parse pricing config: %w", err)
	}
	if cfg.BasePricePerSqm <= 0 {
		return PricingConfig{}, fmt.Errorf("invalid PRICING_BASE_PRICE_PER_SQM: %d", cfg.BasePricePerSqm)
	}
	return cfg, nil
}

// LoadDatabase reads only the DB_ variables.
func LoadDatabase() (DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DB_"}); err != nil {
		return DatabaseConfig{}, fmt.Errorf("failed to parse database config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pricing.BasePricePerSqm <= 0 {
		return fmt.Errorf("invalid PRICING_BASE_PRICE_PER_SQM: %d", c.Pricing.BasePricePerSqm)
	}
	if c.Telegram.Token != "" && len(c.Admin.IDs) == 0 {
		return fmt.Errorf("at least one admin ID is required when the bot is enabled")
	}
	if c.Telegram.FrameInterval <= 0 {
		return fmt.Errorf("invalid TELEGRAM_FRAME_INTERVAL: %s", c.Telegram.FrameInterval)
	}
	return nil
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
