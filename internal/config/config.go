package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Security SecurityConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port    string
	AppName string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

type SecurityConfig struct {
	BcryptCost int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type SeedConfig struct {
	AdminUsername   string
	AdminPassword   string
	AddressWorkbook string
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "3000"),
			AppName: getEnv("APP_NAME", "MQK Amtsilati Nusantara Dashboard"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "mqk"),
			TimeZone:        getEnv("DB_TIMEZONE", "Asia/Jakarta"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "mqk-secret-key-change-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 8),
			Issuer:          getEnv("JWT_ISSUER", "mqk-dashboard"),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_REVALIDATE_CHANNEL", "mqk:revalidate"),
		},
		Cache: CacheConfig{
			Size: getEnvAsInt("CACHE_SIZE", 512),
			TTL:  getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			AdminUsername:   getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "admin123"),
			AddressWorkbook: getEnv("SEED_ADDRESS_WORKBOOK", ""),
		},
	}

	// bcrypt below DefaultCost is not accepted for stored credentials
	if cfg.Security.BcryptCost < bcrypt.DefaultCost {
		cfg.Security.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Security.BcryptCost > bcrypt.MaxCost {
		cfg.Security.BcryptCost = bcrypt.MaxCost
	}

	return cfg
}

// DSN returns DATABASE_URL when set, otherwise a key/value Postgres DSN.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.TimeZone,
	)
}

// TokenTTL is the lifetime of an issued session token.
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
