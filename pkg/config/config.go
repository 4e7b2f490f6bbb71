package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	OTEL      OTELConfig
	Search    SearchConfig
	Booking   BookingConfig
	Recommend RecommendConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	GraphQLPort    int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration. An empty URL disables
// name suggestions.
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// SearchConfig tunes the search pipeline
type SearchConfig struct {
	MinScore        float64
	DefaultLimit    int
	CacheTTLSeconds int
	SynonymsPath    string
	// queries kept warm in the search cache
	WarmQueries         []string
	WarmIntervalSeconds int
}

// BookingConfig holds the marketplace-wide booking defaults
type BookingConfig struct {
	OpenHour  int
	CloseHour int
}

// RecommendConfig tunes the recommendation pipeline
type RecommendConfig struct {
	DefaultLimit int
	HybridWeight float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			GraphQLPort:    getEnvAsInt("GRAPHQL_PORT", 8081),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "booksaloon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", ""),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "salons"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "booksaloon-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Search: SearchConfig{
			MinScore:            getEnvAsFloat("SEARCH_MIN_SCORE", 0.3),
			DefaultLimit:        getEnvAsInt("SEARCH_DEFAULT_LIMIT", 50),
			CacheTTLSeconds:     getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 300),
			SynonymsPath:        getEnv("SEARCH_SYNONYMS_PATH", ""),
			WarmQueries:         getEnvAsList("SEARCH_WARM_QUERIES", nil),
			WarmIntervalSeconds: getEnvAsInt("SEARCH_WARM_INTERVAL_SECONDS", 600),
		},
		Booking: BookingConfig{
			OpenHour:  getEnvAsInt("BOOKING_OPEN_HOUR", 9),
			CloseHour: getEnvAsInt("BOOKING_CLOSE_HOUR", 21),
		},
		Recommend: RecommendConfig{
			DefaultLimit: getEnvAsInt("RECOMMEND_DEFAULT_LIMIT", 6),
			HybridWeight: getEnvAsFloat("RECOMMEND_HYBRID_WEIGHT", 0.6),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("invalid booking hours %d-%d", c.Booking.OpenHour, c.Booking.CloseHour)
	}
	if c.Recommend.HybridWeight < 0 || c.Recommend.HybridWeight > 1 {
		return fmt.Errorf("RECOMMEND_HYBRID_WEIGHT must be within [0, 1], got %g", c.Recommend.HybridWeight)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
