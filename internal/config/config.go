package config

import (
	"os"
	"strconv"
)

// Config holds every runtime setting the API reads from the environment.
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Redis   RedisConfig
	AppyPay AppyPayConfig
	Mail    MailConfig
	JWT     JWTConfig
}

type ServerConfig struct {
	Port        string
	DatabaseURL string
	AdminAPIKey string
}

// CatalogConfig points at the external commerce platform the product
// catalog is synced from.
type CatalogConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	CacheTTLSecs   int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AppyPayConfig carries the payment gateway credentials.
type AppyPayConfig struct {
	BaseURL       string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Resource      string
	ChargeWorkers int
}

type MailConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	AdminEmail string
}

type JWTConfig struct {
	Secret string
}

// Load reads the configuration from the environment. Defaults are
// development-friendly; production deployments set everything.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("APP_PORT", "8080"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Catalog: CatalogConfig{
			BaseURL:        getEnv("CATALOG_BASE_URL", ""),
			ConsumerKey:    getEnv("CATALOG_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("CATALOG_CONSUMER_SECRET", ""),
			CacheTTLSecs:   getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AppyPay: AppyPayConfig{
			BaseURL:       getEnv("APPYPAY_BASE_URL", ""),
			TokenURL:      getEnv("APPYPAY_TOKEN_URL", ""),
			ClientID:      getEnv("APPYPAY_CLIENT_ID", ""),
			ClientSecret:  getEnv("APPYPAY_CLIENT_SECRET", ""),
			Resource:      getEnv("APPYPAY_RESOURCE", ""),
			ChargeWorkers: getEnvInt("APPYPAY_CHARGE_WORKERS", 2),
		},
		Mail: MailConfig{
			Host:       getEnv("MAIL_HOST", ""),
			Port:       getEnv("MAIL_PORT", "587"),
			Username:   getEnv("MAIL_USERNAME", ""),
			Password:   getEnv("MAIL_PASSWORD", ""),
			From:       getEnv("MAIL_FROM", "no-reply@kitanda.ao"),
			AdminEmail: getEnv("MAIL_ADMIN", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
