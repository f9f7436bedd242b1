package configuration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
)

// Repository defines persistence operations for configurations and their
// memberships. Membership writes are permissive: ownership rules live in
// Service, not here.
type Repository interface {
	// Create inserts a configuration. An empty configNo becomes CNFG-{id:03d}.
	Create(ctx context.Context, name, note, configNo string) (*Configuration, error)

	// List retrieves all configurations ordered by id.
	List(ctx context.Context) ([]Configuration, error)

	// GetByID returns ErrConfigNotFound if the configuration does not exist.
	GetByID(ctx context.Context, id int64) (*Configuration, error)

	// GetByConfigNo returns ErrConfigNotFound if no configuration has the number.
	GetByConfigNo(ctx context.Context, configNo string) (*Configuration, error)

	// Rename changes the name only. updated_at is left untouched.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a configuration; its memberships cascade.
	Delete(ctx context.Context, id int64) error

	ListDevices(ctx context.Context, configID int64) ([]asset.Device, error)
	ListLicenses(ctx context.Context, configID int64) ([]asset.License, error)

	// AssignDevice adds a membership; an existing pair is a silent no-op.
	AssignDevice(ctx context.Context, configID, deviceID int64) error
	UnassignDevice(ctx context.Context, configID, deviceID int64) error
	// MoveDevice reassigns in one transaction; from == to is a no-op.
	MoveDevice(ctx context.Context, fromID, toID, deviceID int64) error

	// AssignLicense upserts: a license owned elsewhere is moved to configID.
	AssignLicense(ctx context.Context, configID, licenseID int64, note string) error
	UnassignLicense(ctx context.Context, configID, licenseID int64) error
	MoveLicense(ctx context.Context, fromID, toID, licenseID int64) error

	ListAssignedDeviceIDs(ctx context.Context) ([]int64, error)
	ListAssignedLicenseIDs(ctx context.Context) ([]int64, error)

	// GetDeviceOwner reports the owning configuration, if any.
	GetDeviceOwner(ctx context.Context, deviceID int64) (int64, bool, error)
	GetLicenseOwner(ctx context.Context, licenseID int64) (int64, bool, error)
}

const configColumns = `config_id, config_no, name, note, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed configuration repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a configuration and derives its number from the id the
// row actually received, inside the same transaction.
func (r *SQLiteRepository) Create(ctx context.Context, name, note, configNo string) (*Configuration, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO configurations (config_no, name, note, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			configNo, name, note, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting configuration: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("reading configuration id: %w", err)
		}

		if configNo == "" {
			if _, err := tx.ExecContext(ctx,
				`UPDATE configurations SET config_no = printf('CNFG-%03d', config_id) WHERE config_id = ?`,
				id,
			); err != nil {
				return fmt.Errorf("assigning configuration number: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List retrieves all configurations ordered by id ascending.
func (r *SQLiteRepository) List(ctx context.Context) ([]Configuration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+configColumns+` FROM configurations ORDER BY config_id`)
	if err != nil {
		return nil, fmt.Errorf("querying configurations: %w", err)
	}
	defer rows.Close()

	var configs []Configuration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning configuration: %w", err)
		}
		configs = append(configs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating configurations: %w", err)
	}
	return configs, nil
}

// GetByID retrieves a configuration by id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Configuration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM configurations WHERE config_id = ?`, id)
	c, err := scanConfiguration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("querying configuration by id: %w", err)
	}
	return c, nil
}

// GetByConfigNo retrieves the oldest configuration with the given number.
func (r *SQLiteRepository) GetByConfigNo(ctx context.Context, configNo string) (*Configuration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM configurations WHERE config_no = ? ORDER BY config_id LIMIT 1`, configNo)
	c, err := scanConfiguration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("querying configuration by number: %w", err)
	}
	return c, nil
}

// Rename updates the name of a configuration.
func (r *SQLiteRepository) Rename(ctx context.Context, id int64, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE configurations SET name = ? WHERE config_id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming configuration: %w", err)
	}
	return requireRow(result)
}

// Delete removes a configuration and, through the foreign keys, its memberships.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM configurations WHERE config_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting configuration: %w", err)
	}
	return requireRow(result)
}

// ListDevices returns the devices in a configuration, newest first.
func (r *SQLiteRepository) ListDevices(ctx context.Context, configID int64) ([]asset.Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.device_id, d.asset_no, d.display_name, d.device_type, d.model, d.version, d.state, d.note
		FROM devices d
		JOIN config_devices cd ON cd.device_id = d.device_id
		WHERE cd.config_id = ?
		ORDER BY d.device_id DESC`, configID)
	if err != nil {
		return nil, fmt.Errorf("querying configuration devices: %w", err)
	}
	return asset.CollectDevices(rows)
}

// ListLicenses returns the licenses in a configuration, newest first.
func (r *SQLiteRepository) ListLicenses(ctx context.Context, configID int64) ([]asset.License, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.license_id, l.license_no, l.name, l.license_key, l.state, l.note
		FROM licenses l
		JOIN config_licenses cl ON cl.license_id = l.license_id
		WHERE cl.config_id = ?
		ORDER BY l.license_id DESC`, configID)
	if err != nil {
		return nil, fmt.Errorf("querying configuration licenses: %w", err)
	}
	return asset.CollectLicenses(rows)
}

// AssignDevice links a device to a configuration.
func (r *SQLiteRepository) AssignDevice(ctx context.Context, configID, deviceID int64) error {
	return insertDevice(ctx, r.db, configID, deviceID)
}

// UnassignDevice removes a device from a configuration. A missing pair is not an error.
func (r *SQLiteRepository) UnassignDevice(ctx context.Context, configID, deviceID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM config_devices WHERE config_id = ? AND device_id = ?`, configID, deviceID,
	); err != nil {
		return fmt.Errorf("unassigning device: %w", err)
	}
	return nil
}

// MoveDevice deletes the old membership and inserts the new one in one transaction.
func (r *SQLiteRepository) MoveDevice(ctx context.Context, fromID, toID, deviceID int64) error {
	if fromID == toID {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM config_devices WHERE config_id = ? AND device_id = ?`, fromID, deviceID,
		); err != nil {
			return fmt.Errorf("removing device from configuration %d: %w", fromID, err)
		}
		return insertDevice(ctx, tx, toID, deviceID)
	})
}

// AssignLicense links a license to a configuration, taking it from any
// previous owner.
func (r *SQLiteRepository) AssignLicense(ctx context.Context, configID, licenseID int64, note string) error {
	return upsertLicense(ctx, r.db, configID, licenseID, note)
}

// UnassignLicense removes a license from a configuration. A missing pair is not an error.
func (r *SQLiteRepository) UnassignLicense(ctx context.Context, configID, licenseID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM config_licenses WHERE config_id = ? AND license_id = ?`, configID, licenseID,
	); err != nil {
		return fmt.Errorf("unassigning license: %w", err)
	}
	return nil
}

// MoveLicense reassigns a license in one transaction, keeping its membership note.
func (r *SQLiteRepository) MoveLicense(ctx context.Context, fromID, toID, licenseID int64) error {
	if fromID == toID {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var note string
		err := tx.QueryRowContext(ctx,
			`SELECT note FROM config_licenses WHERE config_id = ? AND license_id = ?`, fromID, licenseID,
		).Scan(&note)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading license membership: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM config_licenses WHERE config_id = ? AND license_id = ?`, fromID, licenseID,
		); err != nil {
			return fmt.Errorf("removing license from configuration %d: %w", fromID, err)
		}
		return upsertLicense(ctx, tx, toID, licenseID, note)
	})
}

// ListAssignedDeviceIDs returns the ids of devices owned by any configuration.
func (r *SQLiteRepository) ListAssignedDeviceIDs(ctx context.Context) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT DISTINCT device_id FROM config_devices ORDER BY device_id`)
}

// ListAssignedLicenseIDs returns the ids of licenses owned by any configuration.
func (r *SQLiteRepository) ListAssignedLicenseIDs(ctx context.Context) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT license_id FROM config_licenses ORDER BY license_id`)
}

// GetDeviceOwner returns the configuration holding a device.
func (r *SQLiteRepository) GetDeviceOwner(ctx context.Context, deviceID int64) (int64, bool, error) {
	return r.queryOwner(ctx,
		`SELECT config_id FROM config_devices WHERE device_id = ? ORDER BY config_id LIMIT 1`, deviceID)
}

// GetLicenseOwner returns the configuration holding a license.
func (r *SQLiteRepository) GetLicenseOwner(ctx context.Context, licenseID int64) (int64, bool, error) {
	return r.queryOwner(ctx,
		`SELECT config_id FROM config_licenses WHERE license_id = ?`, licenseID)
}

func (r *SQLiteRepository) queryIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying assigned ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning assigned id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assigned ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) queryOwner(ctx context.Context, query string, assetID int64) (int64, bool, error) {
	var owner int64
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying owner: %w", err)
	}
	return owner, true, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDevice(ctx context.Context, db execer, configID, deviceID int64) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO config_devices (config_id, device_id) VALUES (?, ?)`,
		configID, deviceID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: configuration %d or device %d", ErrInvalidReference, configID, deviceID)
		}
		return fmt.Errorf("assigning device: %w", err)
	}
	return nil
}

func upsertLicense(ctx context.Context, db execer, configID, licenseID int64, note string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO config_licenses (config_id, license_id, note) VALUES (?, ?, ?)
		 ON CONFLICT(license_id) DO UPDATE SET config_id = excluded.config_id`,
		configID, licenseID, note,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: configuration %d or license %d", ErrInvalidReference, configID, licenseID)
		}
		return fmt.Errorf("assigning license: %w", err)
	}
	return nil
}

// requireRow maps an UPDATE or DELETE that matched nothing to ErrConfigNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row rowScanner) (*Configuration, error) {
	var (
		c                    Configuration
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.ConfigNo, &c.Name, &c.Note, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// parseTime accepts RFC 3339 and SQLite's CURRENT_TIMESTAMP format.
// Zero time is returned if neither matches.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
