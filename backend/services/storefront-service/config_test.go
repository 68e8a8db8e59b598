package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDBEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("POSTGRES_HOST", "localhost")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setDBEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "order.events", cfg.OrderEventsTopic)
	assert.False(t, cfg.TrustGatewayHeaders)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setDBEnv(t)
	t.Setenv("CHECKOUT_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TRUST_GATEWAY_HEADERS", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.TrustGatewayHeaders)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
}

func TestLoadConfig_RequiresDatabase(t *testing.T) {
	setDBEnv(t)
	t.Setenv("POSTGRES_HOST", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestApplyDBSecret(t *testing.T) {
	cfg := &Config{}
	cfg.Postgres.Port = "5432"
	cfg.applyDBSecret(map[string]string{
		"POSTGRES_USER":     "vault-user",
		"POSTGRES_PASSWORD": "vault-pass",
		"POSTGRES_PORT":     "",
	})

	assert.Equal(t, "vault-user", cfg.Postgres.User)
	assert.Equal(t, "vault-pass", cfg.Postgres.Password)
	assert.Equal(t, "5432", cfg.Postgres.Port)
}
