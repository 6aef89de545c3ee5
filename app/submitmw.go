package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Locker interface {
	Acquire(ctx context.Context, userID, action string) (bool, error)
	Release(ctx context.Context, userID, action string) error
}

// SubmitGuard lets one request per user and path run at a time. A second
// identical submit while the first is in flight gets 409.
func SubmitGuard(l Locker, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		action := c.Request.Method + " " + c.Request.URL.Path
		ok, err := l.Acquire(c.Request.Context(), uid, action)
		if err != nil {
			// Redis 挂了不拦请求，行级锁仍然兜底
			log.Warn("submit lock unavailable", "err", err, "action", action)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, H{"error": "request already in progress"})
			return
		}
		defer func() {
			if err := l.Release(context.WithoutCancel(c.Request.Context()), uid, action); err != nil {
				log.Warn("release submit lock", "err", err, "action", action)
			}
		}()
		c.Next()
	}
}
