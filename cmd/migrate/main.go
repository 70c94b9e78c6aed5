package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/sipcourse-backend/pkg/config"
	"github.com/angelmondragon/sipcourse-backend/pkg/db"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
	"github.com/angelmondragon/sipcourse-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

var errUsage = errors.New("usage")

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|current|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory on disk (create/validate only; the rest use the embedded set)")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		os.Exit(1)
	}
}

// run executes one migration command. create and validate work on the source
// tree and never open a database.
func run(ctx context.Context, opts options, out io.Writer) (err error) {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("%w: -name is required for create", errUsage)
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "created migration:", path)
		return nil

	case "validate":
		if err := multierr.Append(migrate.ValidateDir(opts.dir), migrate.ValidateEmbedded()); err != nil {
			return err
		}
		fmt.Fprintln(out, "migration validation passed")
		return nil

	case "up", "down", "status", "current", "version":
	default:
		return fmt.Errorf("%w: unknown -cmd value %q", errUsage, opts.cmd)
	}

	if opts.cmd == "version" && opts.version == "" {
		return fmt.Errorf("%w: -version is required for version", errUsage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("open sql handle: %w", err)
	}
	driver := dbClient.Driver()
	logg.Info(ctx, "migrate.start")

	switch opts.cmd {
	case "current":
		v, err := migrate.Version(ctx, sqlDB, driver)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "current version:", v)
	case "version":
		if err := migrate.MigrateToVersion(ctx, sqlDB, driver, opts.version); err != nil {
			return err
		}
	default:
		if err := migrate.Run(ctx, sqlDB, driver, opts.cmd); err != nil {
			return err
		}
	}

	logg.Info(ctx, "migrate.done")
	return nil
}
