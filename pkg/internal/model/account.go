package model

import (
	"time"
)

type (
	// AccountStatus 账号连接状态，只由探测或操作结果推导，用户不能直接设置.
	AccountStatus string
	// SpeedTier 连接速度档位（用户标注的提示值，不自动测量）.
	SpeedTier string
)

const (
	StatusConnected    AccountStatus = "connected"
	StatusError        AccountStatus = "error"
	StatusFull         AccountStatus = "full"
	StatusDisconnected AccountStatus = "disconnected"
)

const (
	SpeedFast   SpeedTier = "fast"
	SpeedMedium SpeedTier = "medium"
	SpeedSlow   SpeedTier = "slow"
)

// Score 返回速度档位的排序分值，fast > medium > slow.
func (s SpeedTier) Score() int {
	switch s {
	case SpeedFast:
		return 3
	case SpeedMedium:
		return 2
	case SpeedSlow:
		return 1
	default:
		return 0
	}
}

// StorageAccount 一个已配置的存储后端连接（账号注册表中的一行）.
type StorageAccount struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:255;index"     json:"user_id"`
	// 展示用元数据
	Name        string `gorm:"size:255"  json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 连接参数，对本系统是不透明字符串；后续可替换为外部密钥管理
	Endpoint  string `gorm:"size:1024" json:"endpoint"`
	AccessKey string `gorm:"size:512"  json:"-"`
	SecretKey string `gorm:"size:2048" json:"-"`
	// 连接状态与用户开关相互独立
	Status    AccountStatus `gorm:"size:32;index" json:"status"`
	IsPrimary bool          `gorm:"index"         json:"is_primary"`
	IsActive  bool          `json:"is_active"`
	// 用量计数器，注册表是唯一可信来源
	StorageUsed  int64 `json:"storage_used"`
	StorageLimit int64 `json:"storage_limit"`
	FilesCount   int64 `json:"files_count"`
	// 连接速度档位
	ConnectionSpeed SpeedTier `gorm:"size:16" json:"connection_speed"`
	// 探测结果
	LastChecked  *time.Time `json:"last_checked"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableBytes 剩余可用容量.
func (a *StorageAccount) AvailableBytes() int64 {
	return a.StorageLimit - a.StorageUsed
}

// UsageRatio 当前用量比例；无配额时视为已满.
func (a *StorageAccount) UsageRatio() float64 {
	if a.StorageLimit <= 0 {
		return 1
	}

	return float64(a.StorageUsed) / float64(a.StorageLimit)
}
