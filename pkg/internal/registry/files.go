package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// FileFilter 文件列表的过滤与排序条件.
type FileFilter struct {
	Type     model.FileType // 空值表示全部类型
	Favorite bool           // 仅收藏
	SortBy   string         // uploaded_at / file_size / original_name / download_count
	SortAsc  bool
}

// sortColumns 允许的排序列白名单.
var sortColumns = map[string]bool{
	"uploaded_at":    true,
	"file_size":      true,
	"original_name":  true,
	"download_count": true,
}

// InsertFile 插入文件元数据记录.
func (s *Store) InsertFile(ctx context.Context, record *model.FileRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}

	return nil
}

// GetFile 按 id 返回用户的文件记录（软删除的记录不可见）.
func (s *Store) GetFile(ctx context.Context, userID, id string) (*model.FileRecord, error) {
	var record model.FileRecord
	if err := s.db.WithContext(ctx).
		First(&record, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get file %s: %w", id, err)
	}

	return &record, nil
}

// ListFiles 列出用户的文件，支持类型/收藏过滤与排序.
func (s *Store) ListFiles(ctx context.Context, userID string, filter FileFilter) ([]model.FileRecord, error) {
	dbx := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Type != "" {
		dbx = dbx.Where("file_type = ?", filter.Type)
	}

	if filter.Favorite {
		dbx = dbx.Where("is_favorite = ?", true)
	}

	order := "uploaded_at DESC"
	if sortColumns[filter.SortBy] {
		dir := "DESC"
		if filter.SortAsc {
			dir = "ASC"
		}

		order = filter.SortBy + " " + dir
	}

	var records []model.FileRecord
	if err := dbx.Order(order).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return records, nil
}

// SoftDeleteFile 软删除文件记录（打删除标记与时间戳，保留用于审计）.
func (s *Store) SoftDeleteFile(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Delete(&model.FileRecord{}, "id = ?", id)
	if tx.Error != nil {
		return fmt.Errorf("soft delete file %s: %w", id, tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleFavorite 反转收藏标记，返回新值.
func (s *Store) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	record, err := s.GetFile(ctx, userID, id)
	if err != nil {
		return false, err
	}

	next := !record.IsFavorite
	if err := s.db.WithContext(ctx).Model(&model.FileRecord{}).
		Where("id = ?", id).
		Update("is_favorite", next).Error; err != nil {
		return false, fmt.Errorf("toggle favorite %s: %w", id, err)
	}

	return next, nil
}

// IncrementDownloads 下载计数 +1. 尽力而为，调用方不应因失败而中断下载.
func (s *Store) IncrementDownloads(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&model.FileRecord{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}
