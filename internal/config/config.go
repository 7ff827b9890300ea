package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort           string
	DatabaseURL        string
	RedisURL           string
	DataFile           string
	ShopID             string
	TokenSecret        string
	TokenIssuer        string
	AdminUsername      string
	AdminPassword      string
	SweepInterval      time.Duration
	PendingOrderTTL    time.Duration
	ReconcileInterval  time.Duration
	PublicRateLimitRPS int
	LoginRateLimitRPM  int
	LogLevel           string
	IdempotencyTTL     time.Duration
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "SHOP_PORT")
	bindEnv(v, "database_url", "DATABASE_URL", "SHOP_DATABASE_URL")
	bindEnv(v, "redis_url", "REDIS_URL", "SHOP_REDIS_URL")
	bindEnv(v, "data_file", "DATA_FILE", "SHOP_DATA_FILE")
	bindEnv(v, "shop_id", "SHOP_ID")
	bindEnv(v, "token_secret", "TOKEN_SECRET", "SHOP_TOKEN_SECRET")
	bindEnv(v, "token_issuer", "TOKEN_ISSUER", "SHOP_TOKEN_ISSUER")
	bindEnv(v, "admin_username", "ADMIN_USERNAME", "SHOP_ADMIN_USERNAME")
	bindEnv(v, "admin_password", "ADMIN_PASSWORD", "SHOP_ADMIN_PASSWORD")
	bindEnv(v, "sweep_interval", "SWEEP_INTERVAL", "SHOP_SWEEP_INTERVAL")
	bindEnv(v, "pending_order_ttl", "PENDING_ORDER_TTL", "SHOP_PENDING_ORDER_TTL")
	bindEnv(v, "reconcile_interval", "RECONCILE_INTERVAL", "SHOP_RECONCILE_INTERVAL")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS")
	bindEnv(v, "login_rate_limit_rpm", "LOGIN_RATE_LIMIT_RPM")
	bindEnv(v, "log_level", "LOG_LEVEL")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL")

	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("data_file", "data/ledger.json")
	v.SetDefault("shop_id", "default")
	v.SetDefault("token_secret", "")
	v.SetDefault("token_issuer", "robux-exchange")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "")
	v.SetDefault("sweep_interval", "10m")
	v.SetDefault("pending_order_ttl", "12h")
	v.SetDefault("reconcile_interval", "1h")
	v.SetDefault("public_rate_limit_rps", 20)
	v.SetDefault("login_rate_limit_rpm", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("idempotency_ttl", "24h")

	sweepInterval, err := time.ParseDuration(v.GetString("sweep_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	pendingTTL, err := time.ParseDuration(v.GetString("pending_order_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid PENDING_ORDER_TTL: %w", err)
	}
	reconcileInterval, err := time.ParseDuration(v.GetString("reconcile_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}
	idempotencyTTL, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}

	cfg := &Config{
		HTTPPort:           v.GetString("port"),
		DatabaseURL:        v.GetString("database_url"),
		RedisURL:           v.GetString("redis_url"),
		DataFile:           v.GetString("data_file"),
		ShopID:             v.GetString("shop_id"),
		TokenSecret:        v.GetString("token_secret"),
		TokenIssuer:        v.GetString("token_issuer"),
		AdminUsername:      v.GetString("admin_username"),
		AdminPassword:      v.GetString("admin_password"),
		SweepInterval:      sweepInterval,
		PendingOrderTTL:    pendingTTL,
		ReconcileInterval:  reconcileInterval,
		PublicRateLimitRPS: max(v.GetInt("public_rate_limit_rps"), 1),
		LoginRateLimitRPM:  max(v.GetInt("login_rate_limit_rpm"), 1),
		LogLevel:           v.GetString("log_level"),
		IdempotencyTTL:     idempotencyTTL,
	}

	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.DatabaseURL == "" && strings.TrimSpace(cfg.DataFile) == "" {
		return nil, fmt.Errorf("either DATABASE_URL or DATA_FILE must be set")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
