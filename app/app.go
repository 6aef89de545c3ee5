package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *db.DB
	RDB    *redis.Client
	Config config.Config
	Log    *slog.Logger

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	if err := RegisterValidators(); err != nil {
		_ = dbConn.Close()
		_ = rdb.Close()
		return nil, err
	}

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: log,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if err := a.DB.Close(); err != nil {
		a.Log.Warn("close database", "err", err)
	}
}
