package main

import (
	"context"
	"log/slog"
	"os"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/routes"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer application.Close()

	repo := db.NewRepo(application.DB.DB)
	if _, err := app.BootstrapSession(context.Background(), cfg, repo, application.AppSessions(), log); err != nil {
		log.Warn("bootstrap session failed", "err", err)
	}

	routes.RegisterRoutes(application.Router, application)

	log.Info("listening", "port", cfg.Port)
	if err := application.Router.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
	}
}
