package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
)

// DeviceRepository defines persistence operations for devices.
type DeviceRepository interface {
	// Create inserts a device and returns it as stored.
	// Returns ErrDuplicateKey if the asset number is taken.
	Create(ctx context.Context, d *Device) (*Device, error)

	// List retrieves all devices, newest first.
	List(ctx context.Context) ([]Device, error)

	// GetByID retrieves a device by id.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id int64) (*Device, error)

	// GetByAssetNo retrieves a device by its asset number.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByAssetNo(ctx context.Context, assetNo string) (*Device, error)
}

// LicenseRepository defines persistence operations for licenses.
type LicenseRepository interface {
	// Create inserts a license and returns it as stored, with LicenseNo
	// derived from the id when it was empty.
	Create(ctx context.Context, l *License) (*License, error)

	// List retrieves all licenses, newest first.
	List(ctx context.Context) ([]License, error)

	// GetByID retrieves a license by id.
	// Returns ErrLicenseNotFound if the license does not exist.
	GetByID(ctx context.Context, id int64) (*License, error)

	// GetByLicenseNo retrieves the oldest license with the given number.
	// Returns ErrLicenseNotFound if none exists.
	GetByLicenseNo(ctx context.Context, licenseNo string) (*License, error)
}

const deviceColumns = `device_id, asset_no, display_name, device_type, model, version, state, note`

const licenseColumns = `license_id, license_no, name, license_key, state, note`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteDeviceRepository implements DeviceRepository using SQLite.
type SQLiteDeviceRepository struct {
	db *sql.DB
}

// NewSQLiteDeviceRepository creates a new SQLite-backed device repository.
func NewSQLiteDeviceRepository(db *sql.DB) *SQLiteDeviceRepository {
	return &SQLiteDeviceRepository{db: db}
}

// Create inserts a new device and re-reads it by id.
func (r *SQLiteDeviceRepository) Create(ctx context.Context, d *Device) (*Device, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (asset_no, display_name, device_type, model, version, state, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.AssetNo, nullableString(d.DisplayName), d.DeviceType, d.Model, d.Version, string(d.State), d.Note,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: asset number %q", ErrDuplicateKey, d.AssetNo)
		}
		return nil, fmt.Errorf("inserting device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading device id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// List retrieves all devices ordered by id descending.
func (r *SQLiteDeviceRepository) List(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices ORDER BY device_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	return CollectDevices(rows)
}

// GetByID retrieves a device by id.
func (r *SQLiteDeviceRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE device_id = ?`, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return d, nil
}

// GetByAssetNo retrieves a device by asset number.
func (r *SQLiteDeviceRepository) GetByAssetNo(ctx context.Context, assetNo string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE asset_no = ?`, assetNo)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by asset number: %w", err)
	}
	return d, nil
}

// SQLiteLicenseRepository implements LicenseRepository using SQLite.
type SQLiteLicenseRepository struct {
	db *sql.DB
}

// NewSQLiteLicenseRepository creates a new SQLite-backed license repository.
func NewSQLiteLicenseRepository(db *sql.DB) *SQLiteLicenseRepository {
	return &SQLiteLicenseRepository{db: db}
}

// Create inserts a license. An empty LicenseNo becomes LIC-{id:03d} in the
// same transaction, so the stored row never has an empty number.
func (r *SQLiteLicenseRepository) Create(ctx context.Context, l *License) (*License, error) {
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO licenses (license_no, name, license_key, state, note)
			 VALUES (?, ?, ?, ?, ?)`,
			l.LicenseNo, l.Name, l.LicenseKey, string(l.State), l.Note,
		)
		if err != nil {
			return fmt.Errorf("inserting license: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("reading license id: %w", err)
		}

		if l.LicenseNo == "" {
			if _, err := tx.ExecContext(ctx,
				`UPDATE licenses SET license_no = printf('LIC-%03d', license_id) WHERE license_id = ?`,
				id,
			); err != nil {
				return fmt.Errorf("assigning license number: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List retrieves all licenses ordered by id descending.
func (r *SQLiteLicenseRepository) List(ctx context.Context) ([]License, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+licenseColumns+` FROM licenses ORDER BY license_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying licenses: %w", err)
	}
	return CollectLicenses(rows)
}

// GetByID retrieves a license by id.
func (r *SQLiteLicenseRepository) GetByID(ctx context.Context, id int64) (*License, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+licenseColumns+` FROM licenses WHERE license_id = ?`, id)
	l, err := scanLicense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("querying license by id: %w", err)
	}
	return l, nil
}

// GetByLicenseNo retrieves the oldest license carrying licenseNo.
func (r *SQLiteLicenseRepository) GetByLicenseNo(ctx context.Context, licenseNo string) (*License, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+licenseColumns+` FROM licenses WHERE license_no = ? ORDER BY license_id LIMIT 1`, licenseNo)
	l, err := scanLicense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("querying license by number: %w", err)
	}
	return l, nil
}

func scanDevice(row rowScanner) (*Device, error) {
	var (
		d           Device
		displayName sql.NullString
		state       string
	)
	if err := row.Scan(&d.ID, &d.AssetNo, &displayName, &d.DeviceType, &d.Model, &d.Version, &state, &d.Note); err != nil {
		return nil, err
	}
	if displayName.Valid {
		d.DisplayName = &displayName.String
	}
	d.State = DeviceState(state)
	return &d, nil
}

func scanLicense(row rowScanner) (*License, error) {
	var (
		l     License
		state string
	)
	if err := row.Scan(&l.ID, &l.LicenseNo, &l.Name, &l.LicenseKey, &state, &l.Note); err != nil {
		return nil, err
	}
	l.State = LicenseState(state)
	return &l, nil
}

// CollectDevices drains rows whose columns follow the devices table order
// (device_id, asset_no, display_name, device_type, model, version, state, note)
// and closes them.
func CollectDevices(rows *sql.Rows) ([]Device, error) {
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// CollectLicenses drains rows whose columns follow the licenses table order
// (license_id, license_no, name, license_key, state, note) and closes them.
func CollectLicenses(rows *sql.Rows) ([]License, error) {
	defer rows.Close()

	var licenses []License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning license: %w", err)
		}
		licenses = append(licenses, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating licenses: %w", err)
	}
	return licenses, nil
}

// nullableString maps a nil or empty pointer to SQL NULL.
func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
