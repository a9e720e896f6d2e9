package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Webhook   WebhookConfig
	Dashboard DashboardConfig
	Auth      AuthConfig
	QRSecret  string
	Reports   ReportsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	AutoMigrate  bool
}

// DSN builds a lib/pq connection string; DATABASE_URL wins when set.
func (d DatabaseConfig) DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	Enabled       bool
	EventCacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	RegistrationCreated  string
	PaymentStatusChanged string
	CheckInChanged       string
}

func (t TopicConfig) All() []string {
	return []string{t.RegistrationCreated, t.PaymentStatusChanged, t.CheckInChanged}
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

const (
	CheckInStoreBackend = "backend"
	CheckInStoreRedis   = "redis"
)

type DashboardConfig struct {
	RefreshInterval time.Duration
	EventCodes      []string
	CheckInStore    string
	DefaultActor    string
}

type AuthConfig struct {
	OIDCIssuer   string
	OIDCClientID string
	JWTSecret    string
	Disabled     bool
}

type ReportsConfig struct {
	Timezone string
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (r ReportsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil || r.Timezone == "" {
		return time.UTC
	}
	return loc
}

// DefaultQRSecret is the placeholder used when QR_SECRET is unset.
const DefaultQRSecret = "change-me-checkin-secret"

// CheckQRSecret rejects the placeholder QR secret unless operator auth is
// disabled.
func (c *Config) CheckQRSecret() error {
	if c.QRSecret != DefaultQRSecret || c.Auth.Disabled {
		return nil
	}
	return errors.New("QR_SECRET is unset: set it or run with AUTH_DISABLED=true")
}

type LogConfig struct {
	Level string
	Dir   string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // SSE streams stay open
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "registration_user"),
			Password:     getEnv("DB_PASSWORD", "registration_pass"),
			Database:     getEnv("DB_NAME", "registration"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			AutoMigrate:  getEnvBool("AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			Enabled:       getEnvBool("REDIS_ENABLED", true),
			EventCacheTTL: getEnvDuration("EVENT_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getEnv("KAFKA_GROUP_ID", "registration-dashboard"),
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				RegistrationCreated:  getEnv("KAFKA_TOPIC_REGISTRATION_CREATED", "registration.created"),
				PaymentStatusChanged: getEnv("KAFKA_TOPIC_PAYMENT_STATUS", "payment.status_changed"),
				CheckInChanged:       getEnv("KAFKA_TOPIC_CHECKIN", "registration.checkin_changed"),
			},
		},
		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Timeout: getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Dashboard: DashboardConfig{
			RefreshInterval: getEnvDuration("DASHBOARD_REFRESH_INTERVAL", 30*time.Second),
			EventCodes:      getEnvList("DASHBOARD_EVENT_CODES", "COFFEE-2025-0726"),
			CheckInStore:    getEnv("CHECKIN_STORE", CheckInStoreBackend),
			DefaultActor:    getEnv("DASHBOARD_DEFAULT_ACTOR", "Dashboard User"),
		},
		Auth: AuthConfig{
			OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
			OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),
			JWTSecret:    getEnv("OPERATOR_JWT_SECRET", ""),
			Disabled:     getEnvBool("AUTH_DISABLED", false),
		},
		QRSecret: getEnv("QR_SECRET", DefaultQRSecret),
		Reports: ReportsConfig{
			Timezone: getEnv("REPORT_TIMEZONE", "Asia/Taipei"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Dir:   getEnv("LOG_DIR", "logs"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or bare seconds ("30").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
