package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Refresh  RefreshConfig
	Contact  ContactConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// SourceConfig describes where the opportunity snapshot is fetched from
type SourceConfig struct {
	URL     string
	Timeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the snapshot archive
type DatabaseConfig struct {
	Enabled        bool
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig holds the refresh lock configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumeTopic  string
	ConsumerGroup string
}

// LogConfig holds zap logger settings
type LogConfig struct {
	Level       string
	Encoding    string
	Development bool
}

// RefreshConfig holds the optional scheduled refresh
type RefreshConfig struct {
	Schedule string
}

// ContactConfig holds the term sheet request recipient
type ContactConfig struct {
	Address string
}

// Load reads configuration from environment variables, after merging a .env file if present
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Source: SourceConfig{
			URL:     getEnv("SOURCE_URL", "http://localhost:3000/market_data.json"),
			Timeout: getEnvDuration("SOURCE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:        getEnvBool("DB_ENABLED", false),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "opportunityradar"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			LockTTL:  getEnvDuration("REDIS_LOCK_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:         getEnv("KAFKA_TOPIC", "opportunity-snapshots"),
			ConsumeTopic:  getEnv("KAFKA_CONSUME_TOPIC", "market-data-published"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "opportunity-radar"),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Encoding:    getEnv("LOG_ENCODING", "console"),
			Development: getEnvBool("LOG_DEVELOPMENT", true),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("REFRESH_SCHEDULE", ""),
		},
		Contact: ContactConfig{
			Address: getEnv("CONTACT_ADDRESS", "advisors@marinelayer.com"),
		},
	}
}

// Addr returns the listen address for the HTTP server
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// KafkaEnabled reports whether any brokers are configured
func (k *KafkaConfig) KafkaEnabled() bool {
	return len(k.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
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
