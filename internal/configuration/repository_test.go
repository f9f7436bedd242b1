package configuration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
	_ "github.com/nerrad567/asset-desk/migrations" // registers the schema
)

// fixture is a migrated database with a few assets.
type fixture struct {
	db       *sql.DB
	repo     *SQLiteRepository
	devices  []*asset.Device
	licenses []*asset.License
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath, BusyTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	require.NoError(t, db.Migrate(ctx))

	f := &fixture{db: db.DB, repo: NewSQLiteRepository(db.DB)}
	devices := asset.NewSQLiteDeviceRepository(db.DB)
	licenses := asset.NewSQLiteLicenseRepository(db.DB)
	for i := 1; i <= 3; i++ {
		d, err := devices.Create(ctx, &asset.Device{
			AssetNo: fmt.Sprintf("DEV-%03d", i), DeviceType: "PC", Model: "M", Version: "v1", State: asset.DeviceActive,
		})
		require.NoError(t, err)
		f.devices = append(f.devices, d)

		l, err := licenses.Create(ctx, &asset.License{
			Name: fmt.Sprintf("Tool %d", i), LicenseKey: fmt.Sprintf("K-%d", i), State: asset.LicenseActive,
		})
		require.NoError(t, err)
		f.licenses = append(f.licenses, l)
	}
	return f
}

func (f *fixture) config(t *testing.T, name string) *Configuration {
	t.Helper()
	c, err := f.repo.Create(context.Background(), name, "", "")
	require.NoError(t, err)
	return c
}

func deviceIDs(devices []asset.Device) []int64 {
	ids := []int64{}
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	return ids
}

func licenseIDs(licenses []asset.License) []int64 {
	ids := []int64{}
	for _, l := range licenses {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestRepository_CreateGeneratesNumberFromID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.config(t, "Config A")
	assert.Equal(t, fmt.Sprintf("CNFG-%03d", a.ID), a.ConfigNo)
	assert.False(t, a.CreatedAt.IsZero())
	assert.False(t, a.UpdatedAt.IsZero())

	// Force a gap so ids are not dense.
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO configurations (config_id, config_no, name) VALUES (41, 'MANUAL', 'Imported')`)
	require.NoError(t, err)

	b := f.config(t, "Config B")
	assert.Equal(t, int64(42), b.ID)
	assert.Equal(t, "CNFG-042", b.ConfigNo)

	explicit, err := f.repo.Create(ctx, "Config C", "note", "BENCH-1")
	require.NoError(t, err)
	assert.Equal(t, "BENCH-1", explicit.ConfigNo)
	assert.Equal(t, "note", explicit.Note)

	found, err := f.repo.GetByConfigNo(ctx, "BENCH-1")
	require.NoError(t, err)
	assert.Equal(t, explicit.ID, found.ID)

	configs, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 4)
	assert.Equal(t, a.ID, configs[0].ID, "ascending by id")
}

func TestRepository_RenameKeepsNumberAndTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.config(t, "Config A")
	_, err := f.db.ExecContext(ctx,
		`UPDATE configurations SET updated_at = '2025-01-01T00:00:00Z' WHERE config_id = ?`, c.ID)
	require.NoError(t, err)
	require.NoError(t, f.repo.Rename(ctx, c.ID, "Config A1"))

	got, err := f.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Config A1", got.Name)
	assert.Equal(t, c.ConfigNo, got.ConfigNo)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got.UpdatedAt, "rename does not bump updated_at")

	assert.ErrorIs(t, f.repo.Rename(ctx, 999, "x"), ErrConfigNotFound)
}

func TestRepository_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repo.GetByID(ctx, 5)
	assert.ErrorIs(t, err, ErrConfigNotFound)
	_, err = f.repo.GetByConfigNo(ctx, "CNFG-404")
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.ErrorIs(t, f.repo.Delete(ctx, 5), ErrConfigNotFound)
}

func TestRepository_AssignDeviceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.config(t, "A")
	d := f.devices[0]

	require.NoError(t, f.repo.AssignDevice(ctx, c.ID, d.ID))
	require.NoError(t, f.repo.AssignDevice(ctx, c.ID, d.ID))

	var rows int
	require.NoError(t, f.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM config_devices WHERE config_id = ? AND device_id = ?`, c.ID, d.ID).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestRepository_ListsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.config(t, "A")

	for _, d := range f.devices {
		require.NoError(t, f.repo.AssignDevice(ctx, c.ID, d.ID))
	}
	for _, l := range f.licenses[:2] {
		require.NoError(t, f.repo.AssignLicense(ctx, c.ID, l.ID, ""))
	}

	devices, err := f.repo.ListDevices(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.devices[2].ID, f.devices[1].ID, f.devices[0].ID}, deviceIDs(devices))

	licenses, err := f.repo.ListLicenses(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.licenses[1].ID, f.licenses[0].ID}, licenseIDs(licenses))

	assigned, err := f.repo.ListAssignedLicenseIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.licenses[0].ID, f.licenses[1].ID}, assigned)
}

func TestRepository_UnassignMissingIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.config(t, "A")

	assert.NoError(t, f.repo.UnassignDevice(ctx, c.ID, f.devices[0].ID))
	assert.NoError(t, f.repo.UnassignLicense(ctx, c.ID, f.licenses[0].ID))
}

func TestRepository_MoveDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	d := f.devices[0]

	require.NoError(t, f.repo.AssignDevice(ctx, a.ID, d.ID))
	require.NoError(t, f.repo.MoveDevice(ctx, a.ID, b.ID, d.ID))

	inA, err := f.repo.ListDevices(ctx, a.ID)
	require.NoError(t, err)
	inB, err := f.repo.ListDevices(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, inA)
	assert.Equal(t, []int64{d.ID}, deviceIDs(inB))

	require.NoError(t, f.repo.MoveDevice(ctx, b.ID, b.ID, d.ID))
	inB, err = f.repo.ListDevices(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{d.ID}, deviceIDs(inB), "move onto itself leaves membership unchanged")
}

func TestRepository_MoveDeviceToMissingConfigRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.config(t, "A")
	d := f.devices[0]
	require.NoError(t, f.repo.AssignDevice(ctx, a.ID, d.ID))

	err := f.repo.MoveDevice(ctx, a.ID, 999, d.ID)
	require.ErrorIs(t, err, ErrInvalidReference)

	owner, ok, err := f.repo.GetDeviceOwner(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok, "device is not orphaned")
	assert.Equal(t, a.ID, owner)
}

func TestRepository_AssignLicenseUpsertMovesSilently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	l := f.licenses[0]

	require.NoError(t, f.repo.AssignLicense(ctx, a.ID, l.ID, "seat 1"))
	require.NoError(t, f.repo.AssignLicense(ctx, b.ID, l.ID, ""))

	owner, ok, err := f.repo.GetLicenseOwner(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, owner)

	inA, err := f.repo.ListLicenses(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, inA)
}

func TestRepository_MoveLicenseKeepsNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	l := f.licenses[0]

	require.NoError(t, f.repo.AssignLicense(ctx, a.ID, l.ID, "seat 1"))
	require.NoError(t, f.repo.MoveLicense(ctx, a.ID, b.ID, l.ID))

	var configID int64
	var note string
	require.NoError(t, f.db.QueryRowContext(ctx,
		`SELECT config_id, note FROM config_licenses WHERE license_id = ?`, l.ID).Scan(&configID, &note))
	assert.Equal(t, b.ID, configID)
	assert.Equal(t, "seat 1", note)
}

func TestRepository_DeleteCascadesMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.config(t, "A")
	require.NoError(t, f.repo.AssignDevice(ctx, c.ID, f.devices[0].ID))
	require.NoError(t, f.repo.AssignLicense(ctx, c.ID, f.licenses[0].ID, ""))

	require.NoError(t, f.repo.Delete(ctx, c.ID))

	devices, err := f.repo.ListAssignedDeviceIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, devices)
	licenses, err := f.repo.ListAssignedLicenseIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, licenses)
}

func TestRepository_AssignUnknownReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.config(t, "A")

	assert.ErrorIs(t, f.repo.AssignDevice(ctx, c.ID, 999), ErrInvalidReference)
	assert.ErrorIs(t, f.repo.AssignLicense(ctx, 999, f.licenses[0].ID, ""), ErrInvalidReference)
}

func TestRepository_OwnerOfFreeAsset(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.repo.GetDeviceOwner(context.Background(), f.devices[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_MoveDeviceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM config_devices").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT OR IGNORE INTO config_devices").
		WithArgs(int64(2), int64(7)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	repo := NewSQLiteRepository(db)
	err = repo.MoveDevice(context.Background(), 1, 2, 7)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateRollsBackWhenNumberingFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE configurations SET config_no").
		WithArgs(int64(3)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewSQLiteRepository(db)
	_, err = repo.Create(context.Background(), "A", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigning configuration number")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, s := range []string{"2026-03-01T09:30:00Z", "2026-03-01 09:30:00", "2026-03-01T09:30:00"} {
		assert.Equal(t, want, parseTime(s), s)
	}
	assert.True(t, parseTime("yesterday").IsZero())
}
