package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"
	"Gin_postgres_redis_inventory/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxIsAdmin  = "isAdmin"
	CtxToken    = "sessionToken"
)

type SessionGetter interface {
	Get(ctx context.Context, token string) (*session.AppSession, error)
	Delete(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func AuthRequired(sess SessionGetter, users UserFinder, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := sess.Get(c.Request.Context(), tok)
		if errors.Is(err, session.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "session store unavailable"})
			return
		}

		// 确认用户仍存在（只查一次）；用户已删除则撤销其全部会话
		u, err := users.FindUserByID(c.Request.Context(), as.UserID)
		if errors.Is(err, db.ErrNotFound) {
			_ = sess.RevokeAllForUser(c.Request.Context(), as.UserID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "user lookup failed"})
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUsername, u.Username)
		c.Set(CtxIsAdmin, cfg.IsAdmin(u.Username))
		c.Set(CtxToken, tok)
		c.Next()
	}
}

// AdminOnly runs after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(CtxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
