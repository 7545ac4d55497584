package router

import (
	"github.com/gin-gonic/gin"

	"github.com/soumik183/instavault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("", handle.HealthLive)
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/pool", handle.HealthPool)
	}
}
