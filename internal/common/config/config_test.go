package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Paystack.Timeout)
	assert.False(t, cfg.Paystack.LiveMode)
	assert.Equal(t, 5*time.Minute, cfg.Workers.LifecycleInterval)
	assert.Equal(t, time.Hour, cfg.Workers.PayoutInterval)
	assert.Equal(t, 30*time.Minute, cfg.Quiz.AnswerTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Contains(t, cfg.Postgres.GetDSN(), "dbname=giveaway")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_123")
	t.Setenv("PAYSTACK_LIVE_MODE", "true")
	t.Setenv("LIFECYCLE_SWEEP_INTERVAL", "90s")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Paystack.LiveMode)
	assert.Equal(t, 90*time.Second, cfg.Workers.LifecycleInterval)
	assert.Contains(t, cfg.Postgres.GetDSN(), "host=db")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}
