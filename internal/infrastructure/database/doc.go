// Package database provides SQLite connectivity for asset-desk.
//
// This package manages:
//   - Database connection with foreign keys enforced (membership rows cascade)
//   - Version-stamped schema migrations (SQL files and Go-coded steps)
//   - Transaction helper and driver error classification
//
// The application is single-user and single-process. The pool is pinned to
// one connection so every statement is serialised through SQLite's single
// writer, which the configuration numbering and ownership checks rely on.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations run once and are recorded in schema_migrations. A database that
// is already current costs a single indexed read on startup; nothing is
// re-scanned or back-filled on every launch.
//   - SQL migrations are YYYYMMDD_HHMMSS_name.up.sql with an optional .down.sql
//   - Go migrations (RegisterMigration) handle steps that must inspect the
//     existing schema, such as adopting databases created before versioning
//   - Other stores (view state) pass their own Source to MigrateSource
package database
