// Package handle 新增健康检查处理器实现.
package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/soumik183/instavault/pkg/context"
)

const timeout = 2 * time.Second

// HealthLive 进程存活探针.
func HealthLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	mgr := ctxPkg.GetManager(c.Request.Context())
	if mgr == nil || mgr.DB == nil || mgr.DB.DB == nil { // mgr.DB.DB 来自于嵌入的 *gorm.DB
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": "db client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	sqlDB, err := mgr.DB.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}

// HealthPool 当前用户账号池健康检查：报告存活账号数量.
func HealthPool(c *gin.Context) {
	user, p, ok := userPool(c)
	if !ok {
		return
	}

	n := p.Len()
	if n == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "pool", "status": "unhealthy", "user": user, "live_accounts": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "pool", "status": "ok", "user": user, "live_accounts": n})
}
