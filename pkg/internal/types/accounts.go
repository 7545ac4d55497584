package types

import (
	"time"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// CreateAccountRequest 添加账号请求.
type CreateAccountRequest struct {
	Name            string `json:"name"              rule:"required,max=255"`
	Description     string `json:"description"       rule:"max=2048"`
	Endpoint        string `json:"endpoint"          rule:"required"`
	AccessKey       string `json:"access_key"        rule:"required"`
	SecretKey       string `json:"secret_key"        rule:"required"`
	StorageLimit    int64  `json:"storage_limit"     rule:"required,min=1"`
	ConnectionSpeed string `json:"connection_speed"  rule:"omitempty,oneof=fast medium slow"`
	IsPrimary       bool   `json:"is_primary"`
}

// TestConnectionRequest 仅测试连接，不持久化.
type TestConnectionRequest struct {
	Endpoint  string `json:"endpoint"   rule:"required"`
	AccessKey string `json:"access_key" rule:"required"`
	SecretKey string `json:"secret_key" rule:"required"`
}

// AccountInfo 账号的展示投影（含探测失败的账号）.
type AccountInfo struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Status          model.AccountStatus `json:"status"`
	IsPrimary       bool                `json:"is_primary"`
	IsActive        bool                `json:"is_active"`
	IsDefault       bool                `json:"is_default"`
	StorageUsed     int64               `json:"storage_used"`
	StorageLimit    int64               `json:"storage_limit"`
	UsagePercent    float64             `json:"usage_percent"`
	FilesCount      int64               `json:"files_count"`
	ConnectionSpeed model.SpeedTier     `json:"connection_speed"`
	LastChecked     *time.Time          `json:"last_checked,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
}

// NewAccountInfo 从账号行构造展示投影.
func NewAccountInfo(a *model.StorageAccount, defaultID string) AccountInfo {
	return AccountInfo{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Status:          a.Status,
		IsPrimary:       a.IsPrimary,
		IsActive:        a.IsActive,
		IsDefault:       a.ID == defaultID,
		StorageUsed:     a.StorageUsed,
		StorageLimit:    a.StorageLimit,
		UsagePercent:    a.UsageRatio() * 100,
		FilesCount:      a.FilesCount,
		ConnectionSpeed: a.ConnectionSpeed,
		LastChecked:     a.LastChecked,
		ErrorMessage:    a.ErrorMessage,
	}
}
