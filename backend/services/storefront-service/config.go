package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/database"
	"github.com/joho/godotenv"
)

const dbSecretName = "storefront/DB_CREDENTIALS"

type Config struct {
	Port     string
	AppEnv   string
	Postgres database.PostgresConfig

	RedisURL            string
	KafkaBrokers        []string
	OrderEventsTopic    string
	OrderSNSTopicArn    string
	FulfillmentQueueURL string

	JWTSecret           string
	TrustGatewayHeaders bool
	CheckoutTimeout     time.Duration
	CatalogCacheTTL     time.Duration
	GuestCartTTL        time.Duration
	AllowedOrigins      string
	RateLimitPerMinute  int

	LogFile           string
	CloudWatchEnabled bool
	UseAWSSecrets     bool
}

func LoadConfig() (*Config, error) {
	// .env is optional; the environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		RedisURL:            os.Getenv("REDIS_URL"),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic:    getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		OrderSNSTopicArn:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
		FulfillmentQueueURL: os.Getenv("FULFILLMENT_QUEUE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TrustGatewayHeaders: getEnvBool("TRUST_GATEWAY_HEADERS", false),
		CheckoutTimeout:     getEnvDuration("CHECKOUT_TIMEOUT", 10*time.Second),
		CatalogCacheTTL:     getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		GuestCartTTL:        getEnvDuration("GUEST_CART_TTL", 7*24*time.Hour),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		LogFile:             os.Getenv("LOG_FILE"),
		CloudWatchEnabled:   getEnvBool("CLOUDWATCH_ENABLED", false),
		UseAWSSecrets:       getEnvBool("AWS_USE_SECRETS", false),
	}

	if cfg.UseAWSSecrets {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if values, err := sm.GetJSONSecret(context.Background(), dbSecretName); err == nil {
				cfg.applyDBSecret(values)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDBSecret overrides the Postgres settings with non-empty secret values.
func (c *Config) applyDBSecret(values map[string]string) {
	set := func(dst *string, key string) {
		if v := values[key]; v != "" {
			*dst = v
		}
	}
	set(&c.Postgres.User, "POSTGRES_USER")
	set(&c.Postgres.Password, "POSTGRES_PASSWORD")
	set(&c.Postgres.DB, "POSTGRES_DB")
	set(&c.Postgres.Host, "POSTGRES_HOST")
	set(&c.Postgres.Port, "POSTGRES_PORT")
}

func (c *Config) validate() error {
	p := c.Postgres
	if p.User == "" || p.Password == "" || p.DB == "" || p.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.CheckoutTimeout <= 0 {
		return fmt.Errorf("CHECKOUT_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
