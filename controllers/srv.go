// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/cache"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/session"
	"Gin_postgres_redis_inventory/slip"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Srv struct {
	Repo      *db.Repo
	Occupancy *cache.OccupancyCache
	Lock      *cache.ActionLock
	AppSess   *session.AppSessionStore
	Cfg       config.Config
	Log       *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB.DB),
		Occupancy: cache.NewOccupancyCache(a.RDB, a.Config.OccupancyTTL),
		Lock:      cache.NewActionLock(a.RDB, a.Config.SubmitLock),
		AppSess:   a.AppSessions(),
		Cfg:       a.Config,
		Log:       a.Log,
	}
}

// --- helpers ---

func userID(c *gin.Context) string { return c.GetString(app.CtxUserID) }

// 路径参数都是 uuid，格式不对直接 400，免得打到数据库
func uuidParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: "invalid " + name})
		return "", false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
}

// writeError maps repository and domain errors to a status code.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case slip.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, api.Error{Error: err.Error(), Code: slip.Code(err)})
	case errors.Is(err, db.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, api.Error{Error: err.Error()})
	case errors.Is(err, db.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: err.Error()})
	case errors.Is(err, db.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, api.Error{Error: err.Error()})
	default:
		log.Error("request failed", "err", err, "path", c.Request.URL.Path, "request_id", c.GetString("requestID"))
		c.JSON(http.StatusInternalServerError, api.Error{Error: "internal error"})
	}
}
