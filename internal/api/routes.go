package api

import "github.com/gin-gonic/gin"

// RegisterRoutes 注册 /api/v1 下的全部接口
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	limited := authGroup.Group("", AuthRateLimitMiddleware(h.cfg.AuthRateLimitPerMinute))
	limited.POST("/register", h.Register)
	limited.POST("/login", h.Login)
	limited.POST("/refresh", h.Refresh)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)
	authGroup.POST("/logout", h.AuthMiddleware(), h.Logout)

	protected := v1.Group("")
	protected.Use(h.AuthMiddleware())

	stations := protected.Group("/stations")
	stations.GET("", h.ListMyStations)
	stations.POST("", h.AddMyStation)
	stations.PATCH("/:number", h.UpdateMyStation)
	stations.DELETE("/:number", h.RemoveMyStation)
	stations.GET("/:number/parameters", h.ListStationParameterVisibility)
	stations.PATCH("/:number/parameters", h.SetParameterVisibilityBulk)
	stations.PATCH("/:number/parameters/:code", h.SetParameterVisibility)

	data := protected.Group("/data")
	data.GET("/latest", h.LatestData)
	data.GET("/:number/latest", h.StationLatestData)
	data.GET("/:number/:code/history", h.HistoryData)
	data.POST("/:number/:code/export", h.ExportHistory)

	admin := protected.Group("/admin")
	admin.Use(h.RequireAdmin())
	admin.GET("/dashboard", h.Dashboard)
	admin.POST("/sync", h.AdminRunSync)
	admin.POST("/readings", h.AdminIngestReadings)

	users := admin.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	adminStations := admin.Group("/stations")
	adminStations.GET("", h.AdminListStations)
	adminStations.POST("", h.AdminCreateStation)
	adminStations.GET("/:number", h.AdminGetStation)
	adminStations.PATCH("/:number", h.AdminUpdateStation)
	adminStations.DELETE("/:number", h.AdminDeleteStation)
	adminStations.GET("/:number/parameters", h.AdminListStationParameters)
	adminStations.POST("/:number/parameters", h.AdminAddStationParameter)
	adminStations.DELETE("/:number/parameters/:code", h.AdminRemoveStationParameter)

	params := admin.Group("/parameters")
	params.GET("", h.AdminListParameters)
	params.PATCH("/:code", h.AdminUpdateParameter)
}
