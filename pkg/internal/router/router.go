// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// Register 在传入的路由组上注册全部业务路由.
func Register(g *gin.RouterGroup) {
	RegisterAccountsRoutes(g)
	RegisterFilesRoutes(g)
	RegisterHealthCheckRoute(g)
}
