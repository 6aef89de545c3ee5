package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port      string
	DB        DatabaseConfig
	RedisAddr string
	RedisPwd  string
	WebOrigin string

	// AdminUsers are usernames allowed to cancel slips, lower-cased.
	AdminUsers []string
	// BootstrapUser, when set, gets a session token logged at startup.
	BootstrapUser string

	SessionTTL   time.Duration
	SubmitLock   time.Duration
	OccupancyTTL time.Duration
	LogLevel     slog.Level
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Embedded reports whether the server should start its own Postgres:
// a localhost host with no password.
func (d DatabaseConfig) Embedded() bool {
	return (d.Host == "localhost" || d.Host == "127.0.0.1") && d.Password == ""
}

// LoadEnv reads .env if present. Missing files are fine.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}
}

func Load() Config {
	return Config{
		Port: get("PORT", "3001"),
		DB: DatabaseConfig{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", "inventory"),
		},
		RedisAddr:     get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      os.Getenv("REDIS_PASSWORD"),
		WebOrigin:     get("WEB_ORIGIN", "http://localhost:5173"),
		AdminUsers:    csvLower(os.Getenv("ADMIN_USERS")),
		BootstrapUser: strings.TrimSpace(os.Getenv("BOOTSTRAP_USER")),
		SessionTTL:    seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		SubmitLock:    seconds("SUBMIT_LOCK_SECONDS", 10*time.Second),
		OccupancyTTL:  seconds("OCCUPANCY_TTL_SECONDS", 5*time.Minute),
		LogLevel:      level(os.Getenv("LOG_LEVEL")),
	}
}

// IsAdmin reports whether username is listed in ADMIN_USERS.
func (c Config) IsAdmin(username string) bool {
	u := strings.ToLower(strings.TrimSpace(username))
	for _, a := range c.AdminUsers {
		if a == u {
			return true
		}
	}
	return false
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func seconds(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring bad duration", "key", k, "value", v)
		return def
	}
	return time.Duration(n) * time.Second
}

func csvLower(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

func level(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
