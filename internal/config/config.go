package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"clubelocal-backend/internal/infrastructure/database"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Coupon   CouponConfig
	Billing  BillingConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	// AllowedOrigins lists the SPA origins; empty means allow all without
	// credentials.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// CouponConfig controls redemption-code generation and the QR payload format.
type CouponConfig struct {
	QRNamespace     string // fixed prefix of the "NAMESPACE:couponId:code" payload
	CodeLength      int
	CodeAlphabet    string // excludes I, O, 0, 1 to avoid misreading
	MaxCodeAttempts int    // bounded retry on code collision
}

// BillingConfig carries the flat subscription price used for the admin
// revenue estimate. The estimate multiplies active subscriptions by this
// value instead of summing real subscription prices.
type BillingConfig struct {
	MonthlyPrice decimal.Decimal
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ClubeLocal API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS",
				"http://localhost:3000,http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clubelocal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 168), // 7 days
		},
		Coupon: CouponConfig{
			QRNamespace:     getEnv("COUPON_QR_NAMESPACE", "CLUBELOCAL"),
			CodeLength:      getEnvInt("COUPON_CODE_LENGTH", 8),
			CodeAlphabet:    getEnv("COUPON_CODE_ALPHABET", "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"),
			MaxCodeAttempts: getEnvInt("COUPON_CODE_MAX_ATTEMPTS", 10),
		},
		Billing: BillingConfig{
			MonthlyPrice: getEnvDecimal("BILLING_MONTHLY_PRICE", "29.90"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Coupon.CodeLength < 4 {
		return fmt.Errorf("COUPON_CODE_LENGTH must be at least 4")
	}
	if c.Coupon.MaxCodeAttempts < 1 {
		return fmt.Errorf("COUPON_CODE_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// DatabaseConfig builds the pool configuration consumed by the
// infrastructure layer.
func (c *Config) DatabaseDBConfig() *database.DBConfig {
	return &database.DBConfig{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.User,
		Password: c.Database.Password,
		DBName:   c.Database.Database,
		SSLMode:  c.Database.SSLMode,

		MaxConns:          int32(c.Database.MaxConns),
		MinConns:          int32(c.Database.MinConns),
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,

		MaxRetries:     5,
		RetryDelay:     time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		value, _ = decimal.NewFromString(defaultValue)
	}
	return value
}

func getEnvList(key, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
