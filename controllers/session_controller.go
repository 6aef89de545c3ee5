package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"

	"github.com/gin-gonic/gin"
)

type SessionController struct{ *Srv }

func NewSessionController(s *Srv) *SessionController { return &SessionController{Srv: s} }

// GET /api/session/me
func (sc *SessionController) Me(c *gin.Context) {
	u, err := sc.Repo.FindUserByID(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"id":          u.ID,
		"username":    u.Username,
		"displayName": u.DisplayName,
		"isAdmin":     c.GetBool(app.CtxIsAdmin),
	})
}

// POST /api/session/logout   删 Redis 里的会话
func (sc *SessionController) Logout(c *gin.Context) {
	if err := sc.AppSess.Delete(c.Request.Context(), c.GetString(app.CtxToken)); err != nil {
		writeError(c, sc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
