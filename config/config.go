package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Paystack    PaystackConfig
	Flutterwave FlutterwaveConfig
	Marketplace MarketplaceConfig
	Media       MediaConfig
	SMTP        SMTPConfig
	Worker      WorkerConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type PaystackConfig struct {
	BaseURL   string
	SecretKey string
}

type FlutterwaveConfig struct {
	BaseURL     string
	SecretKey   string
	WebhookHash string
}

type MarketplaceConfig struct {
	DefaultProvider string
	Currency        string
	CommissionRate  decimal.Decimal
	MinPayout       decimal.Decimal
	ReferencePrefix string
	GatewayTimeout  time.Duration
}

type MediaConfig struct {
	Root    string
	BaseURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type WorkerConfig struct {
	Count             int
	PollInterval      time.Duration
	SweepInterval     time.Duration
	VisibilityTimeout time.Duration
	MaxAttempts       int
}

type RateLimitConfig struct {
	CheckoutPerMin int
	WebhookPerMin  int
}

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] loaded .env")
	}
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "darra:darra@tcp(localhost:3306)/darra?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "darra",
		},
		Paystack: PaystackConfig{
			BaseURL:   env("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey: env("PAYSTACK_SECRET_KEY", ""),
		},
		Flutterwave: FlutterwaveConfig{
			BaseURL:     env("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),
			SecretKey:   env("FLUTTERWAVE_SECRET_KEY", ""),
			WebhookHash: env("FLUTTERWAVE_WEBHOOK_HASH", ""),
		},
		Marketplace: MarketplaceConfig{
			DefaultProvider: env("PAYMENT_PROVIDER", "paystack"),
			Currency:        env("PAYMENT_CURRENCY", "NGN"),
			CommissionRate:  envDecimal("COMMISSION_RATE", "0.04"),
			MinPayout:       envDecimal("MIN_PAYOUT_AMOUNT", "1000"),
			ReferencePrefix: env("PAYMENT_REFERENCE_PREFIX", "DARRA_"),
			GatewayTimeout:  envDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Media: MediaConfig{
			Root:    env("MEDIA_ROOT", "media"),
			BaseURL: env("MEDIA_BASE_URL", "/media"),
		},
		SMTP: SMTPConfig{
			Host:     env("SMTP_HOST", ""),
			Port:     envInt("SMTP_PORT", 587),
			Username: env("SMTP_USERNAME", ""),
			Password: env("SMTP_PASSWORD", ""),
			From:     env("SMTP_FROM", "no-reply@darra.app"),
		},
		Worker: WorkerConfig{
			Count:             envInt("FANOUT_WORKERS", 4),
			PollInterval:      envDuration("FANOUT_POLL_INTERVAL", 2*time.Second),
			SweepInterval:     envDuration("FANOUT_SWEEP_INTERVAL", time.Minute),
			VisibilityTimeout: envDuration("FANOUT_VISIBILITY_TIMEOUT", 5*time.Minute),
			MaxAttempts:       envInt("FANOUT_MAX_ATTEMPTS", 10),
		},
		RateLimit: RateLimitConfig{
			CheckoutPerMin: envInt("CHECKOUT_RATE_LIMIT", 30),
			WebhookPerMin:  envInt("WEBHOOK_RATE_LIMIT", 100),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envDecimal(key, fallback string) decimal.Decimal {
	s := env(key, fallback)
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
