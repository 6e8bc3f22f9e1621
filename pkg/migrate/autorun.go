package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/cinecart/pkg/config"
	"github.com/angelmondragon/cinecart/pkg/db"
	"github.com/angelmondragon/cinecart/pkg/logger"
)

// MaybeRun brings the SQL storage schema up to date at startup when
// CINECART_DB_AUTO_MIGRATE is set. Other storage drivers never reach here.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.DB.AutoMigrate || client == nil {
		return nil
	}
	if logg == nil {
		logg = logger.Nop()
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	latest, err := LatestVersion(DefaultDir)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"dir":            DefaultDir,
		"driver":         client.Dialect(),
		"target_version": latest,
	})
	logg.Info(ctx, "applying storage migrations")

	runner, err := NewRunner(sqlDB, client.Dialect(), DefaultDir)
	if err != nil {
		return err
	}
	if err := runner.Up(ctx); err != nil {
		return err
	}

	logg.Info(ctx, "storage migrations applied")
	return nil
}
