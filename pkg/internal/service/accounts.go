package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/pool"
	"github.com/soumik183/instavault/pkg/internal/types"
	"github.com/soumik183/instavault/pkg/rule"
)

// AccountRegistry 账号管理所需的注册表操作，由 registry.Store 实现.
type AccountRegistry interface {
	ListForUser(ctx context.Context, userID string) ([]model.StorageAccount, error)
	GetAccount(ctx context.Context, id string) (*model.StorageAccount, error)
	InsertAccount(ctx context.Context, account *model.StorageAccount) error
	DeleteAccount(ctx context.Context, id string) error
	SetPrimary(ctx context.Context, userID, id string) error
}

// AccountService 账号管理：添加、删除、主账号切换、启停与统计.
type AccountService struct {
	pool  *pool.Pool
	store AccountRegistry
	dial  pool.Dialer
}

// NewAccountService 创建账号管理服务.
func NewAccountService(p *pool.Pool, store AccountRegistry, dial pool.Dialer) *AccountService {
	return &AccountService{pool: p, store: store, dial: dial}
}

// List 返回用户全部账号的展示投影（包含探测失败的账号）.
func (s *AccountService) List(ctx context.Context, userID string) ([]types.AccountInfo, error) {
	accounts, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	defaultID := s.pool.DefaultID()

	infos := make([]types.AccountInfo, 0, len(accounts))
	for i := range accounts {
		infos = append(infos, types.NewAccountInfo(&accounts[i], defaultID))
	}

	return infos, nil
}

// Create 添加账号：先落注册表行，再探测加入存活池.
// 探测失败时行保留（状态为 error、错误信息可见），且返回失败.
func (s *AccountService) Create(ctx context.Context, userID string, req *types.CreateAccountRequest) (*types.AccountInfo, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("invalid account parameters: %w", err)
	}

	speed := model.SpeedTier(req.ConnectionSpeed)
	if speed == "" {
		speed = model.SpeedMedium
	}

	account := &model.StorageAccount{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		Endpoint:        req.Endpoint,
		AccessKey:       req.AccessKey,
		SecretKey:       req.SecretKey,
		Status:          model.StatusDisconnected,
		IsPrimary:       req.IsPrimary,
		IsActive:        true,
		StorageLimit:    req.StorageLimit,
		ConnectionSpeed: speed,
	}

	if err := s.store.InsertAccount(ctx, account); err != nil {
		return nil, err
	}

	if err := s.pool.Add(ctx, account); err != nil {
		// 行已存在且带着探测错误，调用方可以展示并让用户修正后重试
		return nil, fmt.Errorf("account saved but connection failed: %w", err)
	}

	info := types.NewAccountInfo(account, s.pool.DefaultID())

	return &info, nil
}

// Delete 删除账号：先移出存活池，再删注册表行.
// 该账号上已存文件的元数据保留，成为孤儿记录，直到账号被重新添加.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	s.pool.Remove(id)

	return s.store.DeleteAccount(ctx, id)
}

// SetPrimary 设为主账号（两次顺序写），随后刷新存活快照.
func (s *AccountService) SetPrimary(ctx context.Context, userID, id string) error {
	if err := s.store.SetPrimary(ctx, userID, id); err != nil {
		return err
	}

	// 主标记影响所有账号的快照
	for _, a := range s.pool.List() {
		_ = s.pool.ReloadAccount(ctx, a.ID)
	}

	return nil
}

// ToggleActive 翻转账号的用户启用开关.
func (s *AccountService) ToggleActive(ctx context.Context, id string) (bool, error) {
	return s.pool.ToggleActive(ctx, id)
}

// TestConnection 仅验证连接参数，不持久化任何状态.
func (s *AccountService) TestConnection(ctx context.Context, req *types.TestConnectionRequest) error {
	if err := rule.ValidateStruct(req); err != nil {
		return fmt.Errorf("invalid connection parameters: %w", err)
	}

	client, err := s.dial(&model.StorageAccount{
		Endpoint:  req.Endpoint,
		AccessKey: req.AccessKey,
		SecretKey: req.SecretKey,
	})
	if err != nil {
		return err
	}

	return client.Probe(ctx)
}

// Stats 返回存活账号的聚合统计.
func (s *AccountService) Stats() pool.Totals {
	return s.pool.Stats()
}

// SelectFor 为给定字节数挑选上传目标（暴露给 UI 做容量预检）.
func (s *AccountService) SelectFor(requiredBytes int64) (*types.AccountInfo, error) {
	handle, err := s.pool.Select(requiredBytes)
	if err != nil {
		return nil, err
	}

	info := types.NewAccountInfo(&handle.Account, s.pool.DefaultID())

	return &info, nil
}
