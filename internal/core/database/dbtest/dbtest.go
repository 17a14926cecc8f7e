// Package dbtest 为各层测试提供临时 sqlite 库
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"massage-booking-api/internal/core/database"
)

// Open 每个测试一个独立文件库，已完成迁移
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
