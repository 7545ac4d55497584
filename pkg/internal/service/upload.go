package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/pool"
	"github.com/soumik183/instavault/pkg/internal/types"
	nlog "github.com/soumik183/instavault/pkg/log"
	"github.com/soumik183/instavault/pkg/metrics"
)

// UploadRequest 一次上传的输入. Content 必须可 Seek，
// 写入失败转移到其它账号重试时会回到起始位置.
type UploadRequest struct {
	OriginalName string
	Size         int64
	MimeType     string
	Content      io.ReadSeeker
}

// UploadService 上传路由：挑选目标账号、写对象、落元数据，写失败时在
// 剩余账号上重试.
type UploadService struct {
	pool  *pool.Pool
	files FileStore
}

// NewUploadService 创建上传路由.
func NewUploadService(p *pool.Pool, files FileStore) *UploadService {
	return &UploadService{pool: p, files: files}
}

// Upload 执行一次上传. 失败账号在本次会话内被剔除后换下一个账号重试，
// 候选池收缩到空即终止；只剩一个账号时写失败直接向上返回.
func (s *UploadService) Upload(ctx context.Context, req *UploadRequest) (*types.UploadResult, error) {
	userID := s.pool.UserID()

	for {
		handle, err := s.pool.Select(req.Size)
		if err != nil {
			// 容量耗尽或无可用账号：终态失败，不做任何对象写入
			return nil, err
		}

		accountID := handle.Account.ID

		if _, err := req.Content.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload content: %w", err)
		}

		objectPath := buildObjectPath(userID, req.OriginalName)

		storageURL, werr := handle.Client.Put(ctx, objectPath, req.Content, req.Size, req.MimeType)
		if werr != nil {
			metrics.UploadsTotal.WithLabelValues(accountID, "error").Inc()

			// 多于一个存活账号时，剔除失败账号并在剩余池上重试；
			// 只剩一个则把错误原样交给调用方
			if s.pool.Len() > 1 {
				nlog.Logger().Warn().Err(werr).
					Str("account", accountID).
					Msg("object write failed, evicting account and retrying")
				s.pool.Evict(accountID)

				continue
			}

			return nil, werr
		}

		record := &model.FileRecord{
			UserID:       userID,
			AccountID:    accountID,
			FilePath:     objectPath,
			FileName:     path.Base(objectPath),
			OriginalName: req.OriginalName,
			StorageURL:   storageURL,
			FileType:     fileTypeFromMime(req.MimeType),
			FileSize:     req.Size,
			MimeType:     req.MimeType,
			UploadedAt:   time.Now().UTC(),
		}

		if err := s.files.InsertFile(ctx, record); err != nil {
			// 对象已写入但元数据失败：对象成为孤儿，错误原样上抛，
			// 不回滚也不掩盖（已知限制）
			metrics.UploadsTotal.WithLabelValues(accountID, "orphaned").Inc()

			return nil, fmt.Errorf("object stored at %s but metadata insert failed: %w", objectPath, err)
		}

		metrics.UploadsTotal.WithLabelValues(accountID, "ok").Inc()
		metrics.UploadBytes.WithLabelValues(accountID).Add(float64(req.Size))

		// 注册表聚合是计数器的可信来源；刷新后同步存活快照，均为尽力而为
		if err := s.files.RefreshUsage(ctx, accountID); err != nil {
			nlog.Logger().Warn().Err(err).Str("account", accountID).Msg("usage refresh failed")
		} else if err := s.pool.ReloadAccount(ctx, accountID); err != nil {
			nlog.Logger().Warn().Err(err).Str("account", accountID).Msg("snapshot reload failed")
		}

		return &types.UploadResult{
			FileID:     record.ID,
			AccountID:  accountID,
			FilePath:   objectPath,
			StorageURL: storageURL,
		}, nil
	}
}

// buildObjectPath 生成对象路径：用户 id 作为命名空间，时间戳前缀保证
// 不需要列目录就能避免撞名.
func buildObjectPath(userID, originalName string) string {
	name := path.Base(originalName)

	return fmt.Sprintf("%s/%d_%s", userID, time.Now().UnixMilli(), name)
}
