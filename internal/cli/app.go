package cli

import (
	"context"
	"fmt"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/audit"
	"github.com/nerrad567/asset-desk/internal/configuration"
	"github.com/nerrad567/asset-desk/internal/i18n"
	"github.com/nerrad567/asset-desk/internal/infrastructure/config"
	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
	"github.com/nerrad567/asset-desk/internal/infrastructure/logging"
	"github.com/nerrad567/asset-desk/internal/seed"
	"github.com/nerrad567/asset-desk/internal/uistate"
	_ "github.com/nerrad567/asset-desk/migrations"
)

// auditSource tags audit entries written by this front-end.
const auditSource = "cli"

// App is the set of stores a command works with.
type App struct {
	Log     *logging.Logger
	Labels  *i18n.Labels
	Assets  *asset.Service
	Configs *configuration.Service
	View    *uistate.SQLiteStore
	Audit   *audit.SQLiteRepository

	db   *database.DB
	uidb *database.DB
}

// OpenApp opens both databases, applies migrations and wires the services.
func OpenApp(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	labels, err := i18n.New(cfg.Labels.Language, cfg.Labels.Path)
	if err != nil {
		return nil, fmt.Errorf("loading labels: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Debug("database ready", "path", cfg.Database.Path)

	uidb, err := database.Open(ctx, database.Config{
		Path:        cfg.UIState.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("opening view state database: %w", err)
	}
	if err := uidb.MigrateSource(ctx, uistate.Migrations()); err != nil {
		uidb.Close() //nolint:errcheck // Best effort cleanup on error path
		db.Close()   //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running view state migrations: %w", err)
	}

	app := &App{
		Log:    log,
		Labels: labels,
		Assets: asset.NewService(
			asset.NewSQLiteDeviceRepository(db.DB),
			asset.NewSQLiteLicenseRepository(db.DB),
		),
		Configs: configuration.NewService(configuration.NewSQLiteRepository(db.DB)),
		View:    uistate.NewSQLiteStore(uidb.DB),
		Audit:   audit.NewSQLiteRepository(db.DB),
		db:      db,
		uidb:    uidb,
	}
	app.Assets.SetLogger(log)
	app.Configs.SetLogger(log)
	app.Configs.SetAuditor(app.Audit, auditSource)

	if cfg.Database.SeedSampleData {
		res, seeded, err := seed.SampleData(ctx, app.Assets, app.Configs)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("seeding sample data: %w", err)
		}
		if seeded {
			log.Info("sample data loaded", "devices", res.Devices, "licenses", res.Licenses, "configurations", res.Configurations)
		}
	}

	return app, nil
}

// DB is the domain database.
func (a *App) DB() *database.DB {
	return a.db
}

// Close closes both databases.
func (a *App) Close() {
	if err := a.uidb.Close(); err != nil {
		a.Log.Error("error closing view state database", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.Log.Error("error closing database", "error", err)
	}
}
