// Package api 定义 HTTP 服务的接口注册入口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/soumik183/instavault/pkg/internal/router"
)

// RegisterGroup 注册全部业务路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.Register(e.Group("/api/v1"))

	return e
}
