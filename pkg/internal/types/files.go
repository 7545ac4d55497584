package types

import (
	"time"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// UploadResult 一次上传成功后的定位信息.
type UploadResult struct {
	FileID     string `json:"file_id"`
	AccountID  string `json:"account_id"`
	FilePath   string `json:"file_path"`
	StorageURL string `json:"storage_url"`
}

// FileInfo 文件的展示投影.
type FileInfo struct {
	ID            string         `json:"id"`
	AccountID     string         `json:"account_id"`
	FileName      string         `json:"file_name"`
	OriginalName  string         `json:"original_name"`
	FilePath      string         `json:"file_path"`
	StorageURL    string         `json:"storage_url"`
	FileType      model.FileType `json:"file_type"`
	FileSize      int64          `json:"file_size"`
	MimeType      string         `json:"mime_type"`
	IsFavorite    bool           `json:"is_favorite"`
	DownloadCount int64          `json:"download_count"`
	UploadedAt    time.Time      `json:"uploaded_at"`
}

// NewFileInfo 从文件记录构造展示投影.
func NewFileInfo(r *model.FileRecord) FileInfo {
	return FileInfo{
		ID:            r.ID,
		AccountID:     r.AccountID,
		FileName:      r.FileName,
		OriginalName:  r.OriginalName,
		FilePath:      r.FilePath,
		StorageURL:    r.StorageURL,
		FileType:      r.FileType,
		FileSize:      r.FileSize,
		MimeType:      r.MimeType,
		IsFavorite:    r.IsFavorite,
		DownloadCount: r.DownloadCount,
		UploadedAt:    r.UploadedAt,
	}
}
