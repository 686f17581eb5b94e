// Package dbtest opens throwaway SQLite databases carrying the full schema.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
)

// Open returns a migrated file-backed SQLite connection limited to a single pooled
// connection, which serialises writers the way row locks would on Postgres.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "sweetorder_"+uuid.NewString()+".sqlite") + "?_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                dbpkg.UTCNow,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// Client wraps Open in the db client used by services.
func Client(t testing.TB) (*dbpkg.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return dbpkg.NewFromGorm(conn), conn
}
