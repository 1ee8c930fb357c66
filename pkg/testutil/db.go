// Package testutil provides throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"aigc.wiki/configs"
	"aigc.wiki/configs/configsdatabase"
	"aigc.wiki/database"

	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a temporary directory. The
// connection is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := configsdatabase.Open(configs.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, true)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Initialize(db, database.Options{Migrate: true}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// NewSeededDB is NewDB plus an admin with the given credentials.
func NewSeededDB(t testing.TB, username, password string) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	if err := database.Initialize(db, database.Options{
		Seed:          true,
		AdminUsername: username,
		AdminPassword: password,
	}); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return db
}
