package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_HOST", "DB_PASSWORD", "ADMIN_USERS", "SUBMIT_LOCK_SECONDS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.True(t, cfg.DB.Embedded())
	assert.Equal(t, 10*time.Second, cfg.SubmitLock)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.AdminUsers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ADMIN_USERS", " Alice , bob,,")
	t.Setenv("SUBMIT_LOCK_SECONDS", "3")
	t.Setenv("OCCUPANCY_TTL_SECONDS", "nope")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.False(t, cfg.DB.Embedded())
	assert.Equal(t, []string{"alice", "bob"}, cfg.AdminUsers)
	assert.True(t, cfg.IsAdmin("ALICE"))
	assert.False(t, cfg.IsAdmin("carol"))
	assert.Equal(t, 3*time.Second, cfg.SubmitLock)
	assert.Equal(t, 5*time.Minute, cfg.OccupancyTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}
