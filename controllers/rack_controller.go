package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/api"

	"github.com/gin-gonic/gin"
)

type RackController struct{ *Srv }

func NewRackController(s *Srv) *RackController { return &RackController{Srv: s} }

func (rc *RackController) GetRack(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rk, err := rc.Repo.GetRack(c.Request.Context(), id)
	if err != nil {
		writeError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, rk)
}

type locationQuery struct {
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Size  int    `form:"size" binding:"omitempty,min=1,max=500"`
	Label string `form:"label" binding:"omitempty,celllabel"`
}

// GET /api/racks/:id/locations?page=&size=&label=
// 先读缓存，未命中再查库并回填
func (rc *RackController) ListLocations(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var q locationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Size == 0 {
		q.Size = 200
	}
	ctx := c.Request.Context()

	if page, hit, err := rc.Occupancy.Get(ctx, id, q.Page, q.Size, q.Label); err != nil {
		rc.Log.Warn("occupancy cache read", "err", err, "rack", id)
	} else if hit {
		c.JSON(http.StatusOK, page)
		return
	}

	// 查库前取代数；期间有变更则回填作废
	gen, genErr := rc.Occupancy.Generation(ctx, id)
	page, err := rc.Repo.ListRackLocations(ctx, id, q.Page, q.Size, q.Label)
	if err != nil {
		writeError(c, rc.Log, err)
		return
	}
	if genErr != nil {
		rc.Log.Warn("occupancy cache generation", "err", genErr, "rack", id)
	} else if _, err := rc.Occupancy.Put(ctx, id, gen, q.Page, q.Size, q.Label, page); err != nil {
		rc.Log.Warn("occupancy cache write", "err", err, "rack", id)
	}
	c.JSON(http.StatusOK, page)
}

// POST /api/racks/:id/locations   {xPosition, yPosition}
func (rc *RackController) CreateLocation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in api.CreateRackLocationReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	row, err := rc.Repo.FindOrCreateRackLocation(c.Request.Context(), id, in.X, in.Y)
	if err != nil {
		writeError(c, rc.Log, err)
		return
	}
	if err := rc.Occupancy.Invalidate(c.Request.Context(), id); err != nil {
		rc.Log.Warn("invalidate occupancy", "err", err, "rack", id)
	}
	c.JSON(http.StatusCreated, row)
}
