package httpapi

import "github.com/gin-gonic/gin"

// SetupRoutes registers the health check and the /api/v1 read endpoints.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/metrics", h.Metrics)
		v1.GET("/charts", h.Charts)
		v1.GET("/summary", h.Summary)
		v1.GET("/members", h.Members)
		v1.GET("/channels", h.Channels)
		v1.GET("/workspace", h.Workspace)
	}
}
