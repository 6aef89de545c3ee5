package controllers

import (
	"fmt"
	"net/http"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/slip"

	"github.com/gin-gonic/gin"
)

type SlipController struct{ *Srv }

func NewSlipController(s *Srv) *SlipController { return &SlipController{Srv: s} }

// kindParam 解析 :kind；parentOnly 时只接受借用/维修单
func kindParam(c *gin.Context, parentOnly bool) (slip.Kind, bool) {
	k, err := slip.ParseKind(c.Param("kind"))
	if err == nil && parentOnly && k.IsReturn() {
		err = fmt.Errorf("%s is not a parent slip kind", k)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, api.Error{Error: err.Error()})
		return 0, false
	}
	return k, true
}

// GET /api/slips/:kind?status=available|all
func (sc *SlipController) List(c *gin.Context) {
	k, ok := kindParam(c, true)
	if !ok {
		return
	}
	var openOnly bool
	switch c.DefaultQuery("status", "all") {
	case "available":
		openOnly = true
	case "all":
	default:
		c.JSON(http.StatusBadRequest, api.Error{Error: "status must be available or all"})
		return
	}
	items, err := sc.Repo.ListSlips(c.Request.Context(), k.Family(), openOnly)
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// GET /api/slips/:kind/:id   四种单据都可查
func (sc *SlipController) Get(c *gin.Context) {
	k, ok := kindParam(c, false)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var (
		out any
		err error
	)
	if k.IsReturn() {
		out, err = sc.Repo.GetReturnDoc(c.Request.Context(), k.Family(), id)
	} else {
		out, err = sc.Repo.GetSlip(c.Request.Context(), k.Family(), id)
	}
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/slips/:kind/:id/resolvable
func (sc *SlipController) Resolvable(c *gin.Context) {
	k, ok := kindParam(c, true)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := sc.Repo.ListResolvableDetails(c.Request.Context(), k.Family(), id)
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// POST /api/slips/:kind   借用单和维修单的请求体不同
func (sc *SlipController) Create(c *gin.Context) {
	k, ok := kindParam(c, true)
	if !ok {
		return
	}
	var (
		out *api.Slip
		err error
	)
	switch k {
	case slip.LoanSlip:
		var in api.CreateLoanSlipReq
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		out, err = sc.Repo.CreateLoanSlip(c.Request.Context(), userID(c), in)
	case slip.MaintenanceSlip:
		var in api.CreateMaintenanceSlipReq
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		out, err = sc.Repo.CreateMaintenanceSlip(c.Request.Context(), userID(c), in)
	}
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	sc.Log.Info("slip created", "kind", k.String(), "id", out.ID, "code", out.Code, "devices", len(out.Details), "user_id", userID(c))
	c.JSON(http.StatusCreated, out)
}

// POST /api/slips/:kind/:id/returns   {items:[{deviceId,status,note}]}
func (sc *SlipController) ApplyReturn(c *gin.Context) {
	k, ok := kindParam(c, true)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in api.ApplyReturnReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := sc.Repo.ApplyReturn(c.Request.Context(), k.Family(), id, userID(c), in.Items)
	if err != nil {
		writeError(c, sc.Log, err)
		return
	}
	sc.Log.Info("return applied", "family", k.Family().String(), "parent", id, "return", doc.ID,
		"devices", doc.DeviceCount, "parent_status", int(doc.ParentStatus))
	c.JSON(http.StatusCreated, doc)
}

// POST /api/slips/:kind/:id/cancel   仅管理员
func (sc *SlipController) Cancel(c *gin.Context) {
	k, ok := kindParam(c, false)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := sc.Repo.CancelSlip(c.Request.Context(), k, id); err != nil {
		writeError(c, sc.Log, err)
		return
	}
	sc.Log.Info("slip cancelled", "kind", k.String(), "id", id, "user_id", userID(c))
	c.JSON(http.StatusOK, app.H{"ok": true})
}
