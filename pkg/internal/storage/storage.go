// Package storage 聚合存储资源：元数据数据库、账号注册表与各用户的账号池.
//
// Example:
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//
//	p, err := mgr.Pools.ForUser(ctx, "user@example.com")
package storage

import (
	"context"
	"sync"

	"github.com/soumik183/instavault/pkg/configs"
	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/pool"
	"github.com/soumik183/instavault/pkg/internal/registry"
	dbc "github.com/soumik183/instavault/pkg/internal/storage/db"
	"github.com/soumik183/instavault/pkg/internal/storage/s3"
	nlog "github.com/soumik183/instavault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB    *dbc.Client
	Store *registry.Store
	Pools *pool.Manager
	Dial  pool.Dialer
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()

		dbi, e := dbc.New(ctx, &cfg.DB)
		if e != nil {
			err = e

			return
		}

		store := registry.NewStore(dbi)
		dial := Dialer(&cfg.Storage)

		mgr = &Manager{
			DB:    dbi,
			Store: store,
			Pools: pool.NewManager(store, dial),
			Dial:  dial,
		}

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// Dialer 返回按账号行连接对象存储后端的 Dialer.
func Dialer(cfg *configs.StorageConfig) pool.Dialer {
	return func(account *model.StorageAccount) (pool.ObjectStorage, error) {
		return s3.Dial(s3.ConnectionParams{
			Endpoint:  account.Endpoint,
			AccessKey: account.AccessKey,
			SecretKey: account.SecretKey,
		}, cfg)
	}
}
