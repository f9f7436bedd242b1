// Package migrations embeds the asset-desk schema into the binary.
//
// SQL files are compiled into the executable and applied in version order by
// database.DB.Migrate. Steps that must inspect an existing schema before
// changing it are written in Go and registered alongside the SQL files.
package migrations

import (
	"embed"

	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS

	database.RegisterMigration(database.Migration{
		Version: legacyColumnsVersion,
		Name:    "legacy_columns",
		UpFunc:  addLegacyColumns,
	})
}
