package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPass          string
	DBName          string
	DBSSLMode       string
	DBTimeZone      string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	JWTSecret       string
	JWTTTL          time.Duration
	Port            string
	Env             string
	MaxUploadSize   int64
	LogLevel        string
	RedisAddr       string
	RedisPassword   string
	BalanceEditTTL  time.Duration
	ConsistencyCron string
	CalendarName    string
}

func NewConfigFromEnv() (*Config, error) {
	maxUploadSize, _ := strconv.ParseInt(getenv("MAX_UPLOAD_SIZE", "10485760"), 10, 64)

	cfg := &Config{
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBUser:          getenv("DB_USER", "postgres"),
		DBPass:          getenv("DB_PASSWORD", "postgres"),
		DBName:          getenv("DB_NAME", "eventis"),
		DBSSLMode:       getenv("DB_SSLMODE", "disable"),
		DBTimeZone:      getenv("DB_TIMEZONE", "Europe/London"),
		DBMaxOpenConns:  getenvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:  getenvInt("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:       getenv("JWT_SECRET", ""),
		JWTTTL:          getenvDuration("JWT_TTL", 24*time.Hour),
		Port:            getenv("PORT", "3000"),
		Env:             getenv("ENV", "development"),
		MaxUploadSize:   maxUploadSize,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		BalanceEditTTL:  getenvDuration("BALANCE_EDIT_TTL", 15*time.Minute),
		ConsistencyCron: getenv("CONSISTENCY_CRON", "0 3 * * *"),
		CalendarName:    getenv("CALENDAR_NAME", "Eventis"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getenvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
