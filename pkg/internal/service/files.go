package service

import (
	"context"
	"fmt"
	"io"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/pool"
	"github.com/soumik183/instavault/pkg/internal/registry"
	"github.com/soumik183/instavault/pkg/internal/types"
	nlog "github.com/soumik183/instavault/pkg/log"
	"github.com/soumik183/instavault/pkg/metrics"
)

// FileService 文件生命周期操作：下载、删除、列表、收藏.
// 每个操作都先按文件记录的账号 id 解析存活句柄再触达存储.
type FileService struct {
	pool  *pool.Pool
	files FileStore
}

// NewFileService 创建文件生命周期服务.
func NewFileService(p *pool.Pool, files FileStore) *FileService {
	return &FileService{pool: p, files: files}
}

// resolveHandle 按文件记录解析存活账号句柄. 账号不在池中
// （例如本会话已移除）返回专门的错误，不做自动重探.
func (s *FileService) resolveHandle(record *model.FileRecord) (*pool.Handle, error) {
	handle, ok := s.pool.Get(record.AccountID)
	if !ok {
		return nil, ErrFileAccountNotFound
	}

	return handle, nil
}

// Delete 删除文件：先删对象，成功后才软删元数据记录.
// 对象删除失败时元数据保持原样（文件继续可见）——宁可不丢文件的踪迹，
// 也不提前隐藏可能仍然存在的字节.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	record, err := s.files.GetFile(ctx, userID, fileID)
	if err != nil {
		return err
	}

	handle, err := s.resolveHandle(record)
	if err != nil {
		return err
	}

	if err := handle.Client.Remove(ctx, record.FilePath); err != nil {
		return fmt.Errorf("remove object %s: %w", record.FilePath, err)
	}

	if err := s.files.SoftDeleteFile(ctx, record.ID); err != nil {
		return err
	}

	// 计数器重算与快照刷新尽力而为
	if err := s.files.RefreshUsage(ctx, record.AccountID); err != nil {
		nlog.Logger().Warn().Err(err).Str("account", record.AccountID).Msg("usage refresh failed")
	} else if err := s.pool.ReloadAccount(ctx, record.AccountID); err != nil {
		nlog.Logger().Warn().Err(err).Str("account", record.AccountID).Msg("snapshot reload failed")
	}

	return nil
}

// Download 取回文件字节流. 下载计数 +1 是后置的尽力而为操作，
// 失败只记日志，不影响下载本身. 调用方负责关闭返回的流.
func (s *FileService) Download(ctx context.Context, userID, fileID string) (io.ReadCloser, *model.FileRecord, error) {
	record, err := s.files.GetFile(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.resolveHandle(record)
	if err != nil {
		return nil, nil, err
	}

	reader, err := handle.Client.Get(ctx, record.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch object %s: %w", record.FilePath, err)
	}

	metrics.DownloadsTotal.WithLabelValues(record.AccountID).Inc()

	if err := s.files.IncrementDownloads(ctx, record.ID); err != nil {
		nlog.Logger().Warn().Err(err).Str("file", record.ID).Msg("download count increment failed")
	}

	return reader, record, nil
}

// List 列出用户的文件（软删除的自动排除）.
func (s *FileService) List(ctx context.Context, userID string, filter registry.FileFilter) ([]types.FileInfo, error) {
	records, err := s.files.ListFiles(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]types.FileInfo, 0, len(records))
	for i := range records {
		infos = append(infos, types.NewFileInfo(&records[i]))
	}

	return infos, nil
}

// Get 返回单个文件的展示投影.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*types.FileInfo, error) {
	record, err := s.files.GetFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	info := types.NewFileInfo(record)

	return &info, nil
}

// ToggleFavorite 反转收藏标记，返回新值.
func (s *FileService) ToggleFavorite(ctx context.Context, userID, fileID string) (bool, error) {
	return s.files.ToggleFavorite(ctx, userID, fileID)
}
