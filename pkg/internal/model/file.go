package model

import (
	"time"

	"gorm.io/gorm"
)

// FileType 粗粒度文件类型，由 MIME 类型推导.
type FileType string

const (
	TypePhoto    FileType = "photo"
	TypeVideo    FileType = "video"
	TypeDocument FileType = "document"
	TypeOther    FileType = "other"
)

// FileRecord 一个已上传对象的元数据.
type FileRecord struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:255;index"     json:"user_id"`
	// 存储该对象字节的账号
	AccountID string `gorm:"size:36;index;index:idx_account_path,unique" json:"account_id"`
	// 对象存储路径，在账号内唯一
	FilePath     string `gorm:"size:1024;index:idx_account_path,unique" json:"file_path"`
	FileName     string `gorm:"size:512"        json:"file_name"`
	OriginalName string `gorm:"size:512;index"  json:"original_name"`
	StorageURL   string `gorm:"size:2048"       json:"storage_url"`
	FileType     FileType `gorm:"size:32;index" json:"file_type"`
	FileSize     int64    `gorm:"index"         json:"file_size"`
	MimeType     string   `gorm:"size:255"      json:"mime_type"`
	IsFavorite   bool     `gorm:"index"         json:"is_favorite"`
	DownloadCount int64   `json:"download_count"`
	UploadedAt    time.Time `gorm:"index" json:"uploaded_at"`
	// 软删除与审计：删除的记录保留用于审计，列表查询自动排除
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
