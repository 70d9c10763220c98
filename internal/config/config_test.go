package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{
			"SERVER_PORT", "SOURCE_URL", "SOURCE_TIMEOUT", "DB_ENABLED",
			"REDIS_ADDR", "KAFKA_BROKERS", "REFRESH_SCHEDULE", "CONTACT_ADDRESS",
		} {
			t.Setenv(key, "")
		}

		cfg := Load()

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
		assert.Equal(t, "http://localhost:3000/market_data.json", cfg.Source.URL)
		assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
		assert.False(t, cfg.Database.Enabled)
		assert.Empty(t, cfg.Redis.Addr)
		assert.False(t, cfg.Kafka.KafkaEnabled())
		assert.Empty(t, cfg.Refresh.Schedule)
		assert.Equal(t, "advisors@marinelayer.com", cfg.Contact.Address)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("SOURCE_URL", "file:///srv/public/market_data.json")
		t.Setenv("SOURCE_TIMEOUT", "3s")
		t.Setenv("DB_ENABLED", "true")
		t.Setenv("REDIS_DB", "2")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("REFRESH_SCHEDULE", "@every 5m")

		cfg := Load()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "file:///srv/public/market_data.json", cfg.Source.URL)
		assert.Equal(t, 3*time.Second, cfg.Source.Timeout)
		assert.True(t, cfg.Database.Enabled)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "@every 5m", cfg.Refresh.Schedule)
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		t.Setenv("SOURCE_TIMEOUT", "soon")
		t.Setenv("DB_ENABLED", "maybe")
		t.Setenv("REDIS_DB", "two")

		cfg := Load()

		assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
		assert.False(t, cfg.Database.Enabled)
		assert.Equal(t, 0, cfg.Redis.DB)
	})
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		User:     "radar",
		Password: "secret",
		DBName:   "archive",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://radar:secret@db:5433/archive?sslmode=require", d.ConnectionString())

	t.Run("escapes credentials", func(t *testing.T) {
		d.Password = "p@ss/w?rd:1"
		dsn := d.ConnectionString()
		assert.Contains(t, dsn, "p%40ss%2Fw%3Frd%3A1")

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		pw, ok := u.User.Password()
		require.True(t, ok)
		assert.Equal(t, "p@ss/w?rd:1", pw)
		assert.Equal(t, "db:5433", u.Host)
		assert.Equal(t, "/archive", u.Path)
	})
}
