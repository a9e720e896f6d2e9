package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, CheckInStoreBackend, cfg.Dashboard.CheckInStore)
	assert.Equal(t, "Dashboard User", cfg.Dashboard.DefaultActor)
	assert.Equal(t, []string{"COFFEE-2025-0726"}, cfg.Dashboard.EventCodes)
	assert.Equal(t, "", cfg.Webhook.URL)
	assert.Len(t, cfg.Kafka.Topics.All(), 3)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "45")
	t.Setenv("DASHBOARD_EVENT_CODES", "A-1, B-2,,")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("WEBHOOK_TIMEOUT", "2s")
	t.Setenv("CHECKIN_STORE", "redis")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, []string{"A-1", "B-2"}, cfg.Dashboard.EventCodes)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, CheckInStoreRedis, cfg.Dashboard.CheckInStore)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", Username: "u", Password: "p", Database: "reg", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/reg?sslmode=disable", d.DSN())

	t.Setenv("DATABASE_URL", "postgres://override")
	assert.Equal(t, "postgres://override", d.DSN())
}

func TestReportsLocation(t *testing.T) {
	assert.Equal(t, "Asia/Taipei", ReportsConfig{Timezone: "Asia/Taipei"}.Location().String())
	assert.Equal(t, time.UTC, ReportsConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.UTC, ReportsConfig{}.Location())
}

func TestCheckQRSecret(t *testing.T) {
	cfg := Load()
	assert.Equal(t, DefaultQRSecret, cfg.QRSecret)
	assert.Error(t, cfg.CheckQRSecret())

	t.Setenv("AUTH_DISABLED", "true")
	assert.NoError(t, Load().CheckQRSecret())

	t.Setenv("AUTH_DISABLED", "false")
	t.Setenv("QR_SECRET", "a-real-secret")
	assert.NoError(t, Load().CheckQRSecret())
}
