package config

import "os"

type Config struct {
	HTTP     HTTPConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Postgres PostgresConfig
}

type HTTPConfig struct {
	Addr string
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  string
	SessionTTL string
}

type CacheConfig struct {
	Host     string
	Port     string
	FailMode string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	Username    string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr: getenv("HTTP_ADDR", ":8000"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AccessTTL:  getenv("ACCESS_TOKEN_TTL", "30m"),
			SessionTTL: getenv("SESSION_TTL", "168h"),
		},
		Cache: CacheConfig{
			Host:     getenv("CACHE_HOST", "localhost"),
			Port:     getenv("CACHE_PORT", "6379"),
			FailMode: getenv("CACHE_FAIL_MODE", "soft"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("DB_HOST", "localhost"),
			Port:        getenv("DB_PORT", "5432"),
			Username:    os.Getenv("DB_USERNAME"),
			Password:    os.Getenv("DB_PASSWORD"),
			Database:    os.Getenv("DB_NAME"),
			SSLMode:     getenv("DB_SSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
