// Package testdb opens a migrated in-memory sqlite database for tests.
package testdb

import (
	"testing"

	"fivebells/internal/infrastructure/db"

	"gorm.io/gorm"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
