package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/app"

	"github.com/gin-gonic/gin"
)

type DeviceController struct{ *Srv }

func NewDeviceController(s *Srv) *DeviceController { return &DeviceController{Srv: s} }

// GET /api/devices/available?deviceTypeId=&quantity=
func (dc *DeviceController) ListAvailable(c *gin.Context) {
	var in struct {
		DeviceTypeID string `form:"deviceTypeId" binding:"omitempty,uuid"`
		Quantity     int    `form:"quantity" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, err)
		return
	}
	items, err := dc.Repo.ListAvailableDevices(c.Request.Context(), in.DeviceTypeID, in.Quantity)
	if err != nil {
		writeError(c, dc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// PUT /api/devices/:id/location   {locationId|null}
func (dc *DeviceController) UpdateLocation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in api.UpdateDeviceLocationReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ch, err := dc.Repo.UpdateDeviceLocation(c.Request.Context(), id, in.LocationID)
	if err != nil {
		writeError(c, dc.Log, err)
		return
	}
	// 新旧两个机架的占用缓存都要失效
	if err := dc.Occupancy.Invalidate(c.Request.Context(), ch.OldRackID, ch.NewRackID); err != nil {
		dc.Log.Warn("invalidate occupancy", "err", err, "old_rack", ch.OldRackID, "new_rack", ch.NewRackID)
	}
	c.JSON(http.StatusOK, ch.Device)
}
