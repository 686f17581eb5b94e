package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	name     string
	version  string
	fromDisk bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.BoolVar(&opts.fromDisk, "from-disk", false, "read migrations from -dir instead of the embedded set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "migrate"}).Error(context.Background(), "load config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	// file-only commands
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Println("migration validation passed")
		return nil
	}

	if cfg.DB.IsSQLite() {
		return errors.New("goose migrations target postgres; sqlite schemas are auto-migrated by the api")
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	src := migrate.EmbeddedSource()
	if opts.fromDisk {
		src = migrate.DiskSource(opts.dir)
	}
	logg.Info(ctx, "migrate ready")

	switch opts.cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, src, opts.cmd); err != nil {
			return fmt.Errorf("goose %s: %w", opts.cmd, err)
		}
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, src, opts.version); err != nil {
			return fmt.Errorf("goose version %s: %w", opts.version, err)
		}
	default:
		return fmt.Errorf("unknown -cmd value: %s", opts.cmd)
	}
	return nil
}
