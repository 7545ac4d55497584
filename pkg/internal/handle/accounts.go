package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/soumik183/instavault/pkg/context"
	"github.com/soumik183/instavault/pkg/internal/service"
	"github.com/soumik183/instavault/pkg/internal/types"
	"github.com/soumik183/instavault/pkg/log"
)

// accountService 构造当前请求的账号管理服务.
func accountService(c *gin.Context) (*service.AccountService, string, bool) {
	user, p, ok := userPool(c)
	if !ok {
		return nil, "", false
	}

	mgr := ctxPkg.GetManager(c.Request.Context())

	return service.NewAccountService(p, mgr.Store, mgr.Dial), user, true
}

// ListAccounts 返回用户全部账号（含连接失败的账号）.
func ListAccounts(c *gin.Context) {
	svc, user, ok := accountService(c)
	if !ok {
		return
	}

	infos, err := svc.List(c.Request.Context(), user)
	if err != nil {
		log.Logger().Error().Err(err).Str("user", user).Msg("list accounts failed")
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(infos))
}

// CreateAccount 添加账号并立即探测连通性.
func CreateAccount(c *gin.Context) {
	svc, user, ok := accountService(c)
	if !ok {
		return
	}

	var req types.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(err))

		return
	}

	info, err := svc.Create(c.Request.Context(), user, &req)
	if err != nil {
		log.Logger().Warn().Err(err).Str("user", user).Msg("create account failed")
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusCreated, types.OK(info))
}

// DeleteAccount 删除账号，该账号上文件的元数据保留.
func DeleteAccount(c *gin.Context) {
	svc, user, ok := accountService(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		log.Logger().Error().Err(err).Str("user", user).Str("account", id).Msg("delete account failed")
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"id": id}))
}

// SetPrimaryAccount 将账号设为主账号（同用户其余账号的主标记被清除）.
func SetPrimaryAccount(c *gin.Context) {
	svc, user, ok := accountService(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := svc.SetPrimary(c.Request.Context(), user, id); err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"id": id, "is_primary": true}))
}

// ToggleAccountActive 翻转账号的启用开关，返回新状态.
func ToggleAccountActive(c *gin.Context) {
	svc, _, ok := accountService(c)
	if !ok {
		return
	}

	id := c.Param("id")

	active, err := svc.ToggleActive(c.Request.Context(), id)
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"id": id, "is_active": active}))
}

// TestConnection 仅验证连接参数，不持久化.
func TestConnection(c *gin.Context) {
	svc, _, ok := accountService(c)
	if !ok {
		return
	}

	var req types.TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(err))

		return
	}

	if err := svc.TestConnection(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusBadGateway, types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"connected": true}))
}

// AccountStats 返回存活账号的聚合统计.
func AccountStats(c *gin.Context) {
	svc, _, ok := accountService(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, types.OK(svc.Stats()))
}

// SelectAccount 按待上传字节数预选目标账号，供上传前预检.
func SelectAccount(c *gin.Context) {
	svc, _, ok := accountService(c)
	if !ok {
		return
	}

	size, err := strconv.ParseInt(c.DefaultQuery("size", "0"), 10, 64)
	if err != nil || size < 0 {
		c.JSON(http.StatusBadRequest, types.Fail(errors.New("invalid size parameter")))

		return
	}

	info, err := svc.SelectFor(size)
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(info))
}
