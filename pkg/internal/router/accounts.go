package router

import (
	"github.com/gin-gonic/gin"

	"github.com/soumik183/instavault/pkg/internal/handle"
)

// RegisterAccountsRoutes 注册账号管理相关路由.
func RegisterAccountsRoutes(g *gin.RouterGroup) {
	accountRoutes := g.Group("/accounts")
	{
		// 账号集合
		accountRoutes.GET("", handle.ListAccounts)
		accountRoutes.POST("", handle.CreateAccount)
		// 仅测试连接参数，不落库
		accountRoutes.POST("/test", handle.TestConnection)
		// 存活账号聚合统计
		accountRoutes.GET("/stats", handle.AccountStats)
		// 按待上传大小预选目标账号
		accountRoutes.GET("/select", handle.SelectAccount)

		// 单个账号操作
		singleGroup := accountRoutes.Group("/:id")
		{
			singleGroup.DELETE("", handle.DeleteAccount)
			singleGroup.POST("/primary", handle.SetPrimaryAccount)
			singleGroup.POST("/toggle", handle.ToggleAccountActive)
		}
	}
}
