// Package service 实现上传路由、文件生命周期与账号管理的业务逻辑.
package service

import (
	"context"
	"errors"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/registry"
)

// ErrFileAccountNotFound 文件记录引用的账号已不在存活池中.
// 区别于其它失败，UI 应提示用户重新添加账号，而不是盲目重试.
var ErrFileAccountNotFound = errors.New("account not found for this file")

// FileStore 服务层依赖的文件元数据操作，由 registry.Store 实现.
type FileStore interface {
	InsertFile(ctx context.Context, record *model.FileRecord) error
	GetFile(ctx context.Context, userID, id string) (*model.FileRecord, error)
	ListFiles(ctx context.Context, userID string, filter registry.FileFilter) ([]model.FileRecord, error)
	SoftDeleteFile(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (bool, error)
	IncrementDownloads(ctx context.Context, id string) error
	RefreshUsage(ctx context.Context, accountID string) error
}
