package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "db_"+uuid.NewString()+".sqlite")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}
	if got := countRows(t, db); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if got := countRows(t, db); got != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", got)
	}
}

func TestWithTxOptions_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)
	ctx := context.Background()
	opts := TxOptions{MaxWait: time.Second, Timeout: 5 * time.Second}

	if err := client.WithTxOptions(ctx, opts, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "a"}).Error
	}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	err := client.WithTxOptions(ctx, opts, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "b"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected body error to propagate, got %v", err)
	}
	if got := countRows(t, db); got != 1 {
		t.Fatalf("expected 1 record after rollback, got %d", got)
	}
}

func TestWithTxOptions_MaxWaitExceeded(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	held, err := sqlDB.Conn(context.Background())
	if err != nil {
		t.Fatalf("hold conn: %v", err)
	}
	defer held.Close()

	err = client.WithTxOptions(context.Background(), TxOptions{MaxWait: 20 * time.Millisecond}, func(tx *gorm.DB) error {
		t.Fatal("body must not run without a connection")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithTxOptions_TimeoutRollsBack(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)

	err := client.WithTxOptions(context.Background(), TxOptions{Timeout: 20 * time.Millisecond}, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "slow"}).Error; err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := countRows(t, db); got != 0 {
		t.Fatalf("expected timed out tx to be rolled back, got %d rows", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !IsUniqueViolation(err, "test_models.name") {
		t.Fatalf("expected column match in sqlite message, got %v", err)
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatal("unrelated error reported as unique violation")
	}
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "x"`), "") {
		t.Fatal("expected postgres text match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)
	var m testModel
	err := db.First(&m, "name = ?", "missing").Error
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if IsNotFound(errors.New("other")) {
		t.Fatal("unexpected not found match")
	}
}

func TestPing(t *testing.T) {
	client := NewFromGorm(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewOpensSQLite(t *testing.T) {
	cfg := config.DBConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "new.sqlite"),
		MaxOpenConns: 1,
	}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got := client.DB().NowFunc(); got.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps, got %v", got.Location())
	}

	if _, err := New(context.Background(), config.DBConfig{Driver: "sqlite"}, nil); err == nil {
		t.Fatal("expected missing DSN to fail")
	}
}
