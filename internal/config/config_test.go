package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "cabino")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "cabino")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(18_000_000), cfg.Pricing.BasePricePerSqm)
	assert.Equal(t, 1200*time.Millisecond, cfg.Pricing.AnimationTime)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Second, cfg.Stats.AnimationTime)
	assert.Empty(t, cfg.Telegram.Token)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PRICING_BASE_PRICE_PER_SQM", "20000000")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "11,22")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(20_000_000), cfg.Pricing.BasePricePerSqm)
	assert.Equal(t, []int64{11, 22}, cfg.Admin.IDs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"base price":        {"PRICING_BASE_PRICE_PER_SQM": "0"},
		"bot without admin": {"TELEGRAM_TOKEN": "123:abc"},
		"frame interval":    {"TELEGRAM_FRAME_INTERVAL": "0s"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPricing(t *testing.T) {
	t.Setenv("PRICING_BASE_PRICE_PER_SQM", "1000")

	cfg, err := LoadPricing()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.BasePricePerSqm)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
