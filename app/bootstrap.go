// app/bootstrap.go
package app

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/models"
	"Gin_postgres_redis_inventory/session"

	"github.com/google/uuid"
)

type UserBootstrapper interface {
	FindOrCreateUser(ctx context.Context, username, newID string) (*models.User, error)
}

type SessionCreator interface {
	Create(ctx context.Context, token, userID string) error
}

// BootstrapSession gives BOOTSTRAP_USER a session token and logs it, so a
// dev setup without the identity service can still call the API.
func BootstrapSession(ctx context.Context, cfg config.Config, users UserBootstrapper, sess SessionCreator, log *slog.Logger) (string, error) {
	if cfg.BootstrapUser == "" {
		return "", nil
	}
	u, err := users.FindOrCreateUser(ctx, cfg.BootstrapUser, uuid.NewString())
	if err != nil {
		return "", err
	}
	tok := session.NewToken()
	if err := sess.Create(ctx, tok, u.ID); err != nil {
		return "", err
	}
	log.Info("[BOOTSTRAP] session issued",
		"user", u.Username, "admin", cfg.IsAdmin(u.Username), "token", tok, "ttl", cfg.SessionTTL)
	return tok, nil
}
