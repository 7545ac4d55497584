//go:build !no_sqlite && sqlite_cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soumik183/instavault/pkg/configs"
)

// createSQLiteCGoDialector 创建SQLite dialector (CGo版本).
func createSQLiteCGoDialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

// 注册SQLite dialector工厂函数 (CGo版本，覆盖纯Go实现).
func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteCGoDialector)
}
