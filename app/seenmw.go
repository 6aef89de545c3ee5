// app/seenmw.go
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type SeenToucher interface {
	TouchUserSeen(ctx context.Context, userID string) error
}

func TouchLastSeen(users SeenToucher, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			c.Next()
			return
		}

		key := "inv:user:lastseen:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = users.TouchUserSeen(c, uid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
