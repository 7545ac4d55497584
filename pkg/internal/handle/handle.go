// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/soumik183/instavault/pkg/context"
	"github.com/soumik183/instavault/pkg/internal/pool"
	"github.com/soumik183/instavault/pkg/internal/registry"
	"github.com/soumik183/instavault/pkg/internal/service"
	"github.com/soumik183/instavault/pkg/internal/storage/s3"
	"github.com/soumik183/instavault/pkg/internal/types"
	"github.com/soumik183/instavault/pkg/rule"
)

// checkUser 提取用户名：Header 优先 -> query 参数 -> 默认 test-user（便于测试）.
func checkUser(c *gin.Context) (string, error) {
	user := c.GetHeader("X-User")
	if user == "" {
		user = c.Query("user")
	}
	// 测试默认值，不为 Release 模式时
	if user == "" && gin.Mode() != gin.ReleaseMode {
		user = "test-user@example.com"
	}

	user = strings.TrimSpace(user)

	if err := rule.ValidateVar(user, "required,email"); err != nil {
		return "", err
	}

	return user, nil
}

// userPool 解析当前请求的用户与其账号池. 失败时已向客户端写入响应.
func userPool(c *gin.Context) (string, *pool.Pool, bool) {
	user, err := checkUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(errors.New("missing or invalid user")))

		return "", nil, false
	}

	mgr := ctxPkg.GetManager(c.Request.Context())
	if mgr == nil {
		c.JSON(http.StatusInternalServerError, types.Fail(errors.New("storage manager not initialized")))

		return "", nil, false
	}

	p, err := mgr.Pools.ForUser(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.Fail(err))

		return "", nil, false
	}

	return user, p, true
}

// failStatus 将领域错误映射到 HTTP 状态码.
func failStatus(err error) int {
	var tooLarge *s3.ErrObjectTooLarge

	switch {
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, pool.ErrAccountNotFound),
		errors.Is(err, service.ErrFileAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, pool.ErrNoStorage):
		return http.StatusInsufficientStorage
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
