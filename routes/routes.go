package routes

import (
	"time"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	sessCtl := controllers.NewSessionController(s)
	deviceCtl := controllers.NewDeviceController(s)
	rackCtl := controllers.NewRackController(s)
	slipCtl := controllers.NewSlipController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)
	submitMW := app.SubmitGuard(s.Lock, a.Log)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	api := r.Group("/api", authMW, seenMW)

	// 会话（令牌由身份服务签发，这里只负责查看和登出）
	sess := api.Group("/session")
	{
		sess.GET("/me", sessCtl.Me)
		sess.POST("/logout", sessCtl.Logout)
	}

	// ------------------------------
	// 设备与机架位置
	// ------------------------------
	devices := api.Group("/devices")
	{
		devices.GET("/available", deviceCtl.ListAvailable) // ?deviceTypeId=&quantity=
		devices.PUT("/:id/location", deviceCtl.UpdateLocation)
	}

	racks := api.Group("/racks")
	{
		racks.GET("/:id", rackCtl.GetRack)
		racks.GET("/:id/locations", rackCtl.ListLocations) // ?page=&size=&label=
		racks.POST("/:id/locations", rackCtl.CreateLocation)
	}

	// ------------------------------
	// 单据：借用 / 维修 及其归还
	// ------------------------------
	slips := api.Group("/slips")
	{
		slips.GET("/:kind", slipCtl.List) // ?status=available|all
		slips.GET("/:kind/:id", slipCtl.Get)
		slips.GET("/:kind/:id/resolvable", slipCtl.Resolvable)

		slips.POST("/:kind", submitMW, slipCtl.Create)
		slips.POST("/:kind/:id/returns", submitMW, slipCtl.ApplyReturn)
		slips.POST("/:kind/:id/cancel", adminMW, submitMW, slipCtl.Cancel)
	}
}
