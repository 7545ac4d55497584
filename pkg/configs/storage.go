package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultStorageBucket 每个账号后端上使用的工作桶名称.
	DefaultStorageBucket = "instavault-storage"
	// DefaultMaxObjectBytes 单对象大小硬上限（500 MiB），超过则直接拒绝写入.
	DefaultMaxObjectBytes = 500 * 1024 * 1024
	// DefaultPresignExpiry 对象访问 URL 的默认有效期.
	DefaultPresignExpiry = time.Hour
	// DefaultStorageRegion 创建桶时使用的区域.
	DefaultStorageRegion = "us-east-1"
)

// StorageConfig 对象存储约定配置. 各账号的 endpoint/密钥保存在账号注册表中，
// 这里只配置所有账号共用的桶名、大小上限等约定.
type StorageConfig struct {
	Bucket         string        `mapstructure:"bucket"           rule:"required"`
	MaxObjectBytes int64         `mapstructure:"max_object_bytes" rule:"min=1"`
	PresignExpiry  time.Duration `mapstructure:"presign_expiry"`
	Region         string        `mapstructure:"region"`
}

// setDefaults 设置对象存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.bucket", DefaultStorageBucket)
	v.SetDefault("storage.max_object_bytes", DefaultMaxObjectBytes)
	v.SetDefault("storage.presign_expiry", DefaultPresignExpiry)
	v.SetDefault("storage.region", DefaultStorageRegion)
}
