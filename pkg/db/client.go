package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client owns the pooled GORM connection shared by repositories.
type Client struct {
	conn *gorm.DB
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// TxOptions bounds a transaction. MaxWait caps how long the caller waits for a pooled
// connection; Timeout caps the transaction body including commit.
type TxOptions struct {
	MaxWait   time.Duration
	Timeout   time.Duration
	Isolation sql.IsolationLevel
}

// New opens cfg.Driver ("postgres" or "sqlite") and applies the pool limits.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	conn, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		NowFunc:                UTCNow,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", cfg.Driver), "db.connected")
	}
	return &Client{conn: conn}, nil
}

func dialector(cfg config.DBConfig) gorm.Dialector {
	if cfg.IsSQLite() {
		return sqlite.Open(cfg.DSN)
	}
	// simple protocol keeps pgbouncer in transaction mode happy
	return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
}

// UTCNow stamps autoCreateTime/autoUpdateTime so keyset cursors compare the same on
// every driver.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// NewFromGorm wraps an open connection for tests and tooling.
func NewFromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction that commits when fn returns nil.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}

// WithTxOptions runs fn in a transaction on a dedicated pooled connection acquired
// within opts.MaxWait. The body is bound to opts.Timeout; exceeding either bound
// rolls back and returns the context error.
func (c *Client) WithTxOptions(ctx context.Context, opts TxOptions, fn func(tx *gorm.DB) error) (err error) {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}

	waitCtx, cancelWait := withOptionalTimeout(ctx, opts.MaxWait)
	sqlConn, err := sqlDB.Conn(waitCtx)
	cancelWait()
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer sqlConn.Close()

	txCtx, cancelTx := withOptionalTimeout(ctx, opts.Timeout)
	defer cancelTx()

	sqlTx, err := sqlConn.BeginTx(txCtx, &sql.TxOptions{Isolation: opts.Isolation})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := c.conn.Session(&gorm.Session{Context: txCtx, NewDB: true})
	tx.Statement.ConnPool = sqlTx

	defer func() {
		if r := recover(); r != nil {
			_ = sqlTx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := txCtx.Err(); err != nil {
		_ = sqlTx.Rollback()
		return fmt.Errorf("transaction exceeded %s: %w", opts.Timeout, err)
	}
	return sqlTx.Commit()
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
