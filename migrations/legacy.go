package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

const legacyColumnsVersion = "20260301_090500"

// legacyColumn is a column that databases created before versioned
// migrations may lack.
type legacyColumn struct {
	table      string
	column     string
	definition string
}

var legacyColumns = []legacyColumn{
	{"licenses", "license_no", "TEXT NOT NULL DEFAULT ''"},
	{"configurations", "config_no", "TEXT NOT NULL DEFAULT ''"},
	{"configurations", "created_at", "TEXT NOT NULL DEFAULT ''"},
	{"configurations", "updated_at", "TEXT NOT NULL DEFAULT ''"},
}

// addLegacyColumns adds any missing business-key and timestamp columns.
// Values are filled by the backfill migration that follows.
func addLegacyColumns(ctx context.Context, tx *sql.Tx) error {
	for _, c := range legacyColumns {
		exists, err := hasColumn(ctx, tx, c.table, c.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.definition)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("adding %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scanning columns of %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
