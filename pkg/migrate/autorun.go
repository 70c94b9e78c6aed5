package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sipcourse-backend/pkg/config"
	"github.com/angelmondragon/sipcourse-backend/pkg/db"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
)

// MaybeRunDev brings the schema up on boot for local runs. Postgres outside
// dev is only ever migrated through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !shouldAutoMigrate(cfg) {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	driver := client.Driver()

	from, err := Version(ctx, sqlDB, driver)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if err := Up(ctx, sqlDB, driver); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	to, err := Version(ctx, sqlDB, driver)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"driver":       driver,
		"from_version": from,
		"to_version":   to,
	}), "migrate.autorun.done")
	return nil
}

// shouldAutoMigrate is true for dev with AUTO_MIGRATE and for any sqlite file.
func shouldAutoMigrate(cfg *config.Config) bool {
	if cfg.DB.IsSQLite() {
		return true
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}
