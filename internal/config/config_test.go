package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.App.CORSAllowedOrigins)
	assert.Equal(t, "Asia/Seoul", cfg.Attendance.DefaultTimezone)
	assert.Equal(t, 16*time.Hour, cfg.Attendance.StaleSessionMaxAge)
	assert.Equal(t, 10*time.Second, cfg.Verification.LookupTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Cron.Interval)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "postgres://postgres:@localhost:5432/codeb?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CRON_INTERVAL", "5m")
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Jakarta")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUEST_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.Cron.Interval)
	assert.Equal(t, "Asia/Jakarta", cfg.Attendance.DefaultTimezone)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 45*time.Second, cfg.App.RequestTimeout)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "bad duration", env: map[string]string{"JWT_SECRET_KEY": "s", "CRON_INTERVAL": "soon"}},
		{name: "negative duration", env: map[string]string{"JWT_SECRET_KEY": "s", "SSE_KEEPALIVE": "-1s"}},
		{name: "zero request timeout", env: map[string]string{"JWT_SECRET_KEY": "s", "REQUEST_TIMEOUT": "0s"}},
		{name: "unknown timezone", env: map[string]string{"JWT_SECRET_KEY": "s", "DEFAULT_TIMEZONE": "Mars/Olympus"}},
		{name: "bad port", env: map[string]string{"JWT_SECRET_KEY": "s", "APP_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel_Fallback(t *testing.T) {
	cfg := &Config{App: AppConfig{LogLevel: "chatty"}}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
