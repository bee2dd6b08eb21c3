package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds SQL connection settings
type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// KafkaConfig holds broker settings for the audit stream
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// AuthConfig holds session settings
type AuthConfig struct {
	JWTSecret            string
	SessionTTL           time.Duration
	RememberTTL          time.Duration
	DefaultAdminUsername string
	DefaultAdminPassword string
	LoginRateLimit       int
	LoginRateWindow      time.Duration
}

// Config is the full service configuration
type Config struct {
	ServiceName       string
	Environment       string
	LogLevel          string
	HTTPPort          string
	HTTPTimeout       time.Duration
	StorageBackend    string
	StorageFallback   string
	StorageDir        string
	BackupDir         string
	JaegerEndpoint    string
	LateCheckInterval time.Duration
	Database          DatabaseConfig
	Redis             RedisConfig
	Kafka             KafkaConfig
	Auth              AuthConfig
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads .env (when present) and the process environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:       getEnv("OTEL_SERVICE_NAME", "pos-service"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 30*time.Second),
		StorageBackend:    getEnv("STORAGE_BACKEND", "file"),
		StorageFallback:   getEnv("STORAGE_FALLBACK", "memory"),
		StorageDir:        getEnv("STORAGE_DIR", "./data"),
		BackupDir:         getEnv("BACKUP_DIR", "./backups"),
		JaegerEndpoint:    os.Getenv("JAEGER_ENDPOINT"),
		LateCheckInterval: getDuration("LATE_CHECK_INTERVAL", time.Hour),
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "posdb"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/pos.db"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "pos:"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			GroupID: getEnv("KAFKA_GROUP_ID", "pos-audit-sink"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", "change-me-in-production"),
			SessionTTL:           getDuration("SESSION_TTL", 8*time.Hour),
			RememberTTL:          getDuration("SESSION_REMEMBER_TTL", 7*24*time.Hour),
			DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
			DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
			LoginRateLimit:       getInt("LOGIN_RATE_LIMIT", 10),
			LoginRateWindow:      getDuration("LOGIN_RATE_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
