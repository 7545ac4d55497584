// Package middleware 提供中间件
package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/soumik183/instavault/pkg/context"
	"github.com/soumik183/instavault/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器注入请求上下文，供 handler 构造服务使用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxPkg.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
