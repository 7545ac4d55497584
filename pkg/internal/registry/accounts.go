// Package registry 实现账号注册表与文件元数据存储，是用量计数器的唯一可信来源.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/storage/db"
)

// ErrNotFound 请求的记录不存在.
var ErrNotFound = errors.New("record not found")

// Store GORM 后端的注册表存储.
type Store struct {
	db *gorm.DB
}

// NewStore 创建注册表存储.
func NewStore(client *db.Client) *Store {
	return &Store{db: client.GetDB()}
}

// ListForUser 返回用户的全部账号，按创建时间升序.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]model.StorageAccount, error) {
	var accounts []model.StorageAccount
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// GetAccount 按 id 返回账号.
func (s *Store) GetAccount(ctx context.Context, id string) (*model.StorageAccount, error) {
	var account model.StorageAccount
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get account %s: %w", id, err)
	}

	return &account, nil
}

// InsertAccount 插入新账号；若设为主账号，先清除该用户其它账号的主标记.
func (s *Store) InsertAccount(ctx context.Context, account *model.StorageAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	dbx := s.db.WithContext(ctx)

	if account.IsPrimary {
		if err := dbx.Model(&model.StorageAccount{}).
			Where("user_id = ?", account.UserID).
			Update("is_primary", false).Error; err != nil {
			return fmt.Errorf("clear primary flags: %w", err)
		}
	}

	if err := dbx.Create(account).Error; err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// UpdateAccount 按字段更新账号.
func (s *Store) UpdateAccount(ctx context.Context, id string, updates map[string]any) error {
	tx := s.db.WithContext(ctx).Model(&model.StorageAccount{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return fmt.Errorf("update account %s: %w", id, tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteAccount 删除账号行. 该账号上已存文件的元数据保留（成为孤儿，直到账号重新添加）.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Delete(&model.StorageAccount{}, "id = ?", id)
	if tx.Error != nil {
		return fmt.Errorf("delete account %s: %w", id, tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPrimary 先清除用户全部主标记，再设置指定账号为主.
// 两次独立写入，不假设多行原子更新；中间崩溃会留下零主账号，用户重选即可恢复.
func (s *Store) SetPrimary(ctx context.Context, userID, id string) error {
	dbx := s.db.WithContext(ctx)

	if err := dbx.Model(&model.StorageAccount{}).
		Where("user_id = ?", userID).
		Update("is_primary", false).Error; err != nil {
		return fmt.Errorf("clear primary flags: %w", err)
	}

	tx := dbx.Model(&model.StorageAccount{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_primary", true)
	if tx.Error != nil {
		return fmt.Errorf("set primary %s: %w", id, tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetActive 更新用户控制的启用开关，与连接状态相互独立.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	return s.UpdateAccount(ctx, id, map[string]any{"is_active": active})
}

// UpdateStatus 写入探测/操作结果（状态、错误信息、检查时间），独立于其它字段.
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.AccountStatus, errorMessage string) error {
	return s.UpdateAccount(ctx, id, map[string]any{
		"status":        status,
		"error_message": errorMessage,
		"last_checked":  time.Now().UTC(),
	})
}

// RefreshUsage 从文件元数据重新聚合账号的用量计数器.
// 上传/删除不直接增减计数器，而是依赖这里的重算（软删除的文件不计入）.
func (s *Store) RefreshUsage(ctx context.Context, accountID string) error {
	var agg struct {
		TotalSize  int64 `gorm:"column:total_size"`
		TotalCount int64 `gorm:"column:total_count"`
	}

	if err := s.db.WithContext(ctx).Model(&model.FileRecord{}).
		Select("COALESCE(SUM(file_size),0) AS total_size, COUNT(*) AS total_count").
		Where("account_id = ?", accountID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("aggregate usage for %s: %w", accountID, err)
	}

	return s.UpdateAccount(ctx, accountID, map[string]any{
		"storage_used": agg.TotalSize,
		"files_count":  agg.TotalCount,
	})
}
