package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	// DefaultDir is the on-disk location used by the create/validate commands.
	DefaultDir = "pkg/migrate/migrations"
	// EmbeddedDir is the migrations root inside Embedded.
	EmbeddedDir = "migrations"

	dialect = "postgres"
)

// Embedded carries the SQL migrations compiled into every binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// Source selects where goose reads migrations from. A nil FS means the local disk.
type Source struct {
	FS  fs.FS
	Dir string
}

// EmbeddedSource reads the migrations compiled into the binary.
func EmbeddedSource() Source {
	return Source{FS: Embedded, Dir: EmbeddedDir}
}

// DiskSource reads migrations from dir on the local filesystem.
func DiskSource(dir string) Source {
	return Source{Dir: dir}
}

func (s Source) prepare() error {
	if s.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	goose.SetBaseFS(s.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, src Source, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := src.prepare(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, src.Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up or down to targetVersion relative to the current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, src Source, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	if err := src.prepare(); err != nil {
		return err
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, src.Dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, src.Dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
