package configuration

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/asset-desk/internal/audit"
)

type warnLogger struct {
	noopLogger
	warnings []string
}

func (l *warnLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

type failingAuditor struct{}

func (failingAuditor) Create(context.Context, *audit.Entry) error {
	return errors.New("audit store down")
}

func (failingAuditor) List(context.Context, audit.Filter) (*audit.ListResult, error) {
	return &audit.ListResult{}, nil
}

func newServiceFixture(t *testing.T) (*Service, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewService(f.repo), f
}

func TestService_CreateAndRename(t *testing.T) {
	svc, _ := newServiceFixture(t)
	ctx := context.Background()

	c, err := svc.CreateConfig(ctx, "  Config A ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Config A", c.Name)

	require.NoError(t, svc.RenameConfig(ctx, c.ID, "Config A1"))

	configs, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, c.ID, configs[0].ID)
	assert.Equal(t, "Config A1", configs[0].Name)
	assert.Equal(t, c.ConfigNo, configs[0].ConfigNo)

	_, err = svc.CreateConfig(ctx, "   ", "", "")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, svc.RenameConfig(ctx, c.ID, ""), ErrInvalidName)
	assert.ErrorIs(t, svc.RenameConfig(ctx, 999, "x"), ErrConfigNotFound)
}

func TestService_AssignDeviceFirstOwnerWins(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	d := f.devices[0]

	require.NoError(t, svc.AssignDevice(ctx, a.ID, d.ID))
	require.NoError(t, svc.AssignDevice(ctx, a.ID, d.ID), "same owner is a no-op")

	err := svc.AssignDevice(ctx, b.ID, d.ID)
	require.ErrorIs(t, err, ErrOwnershipConflict)

	var oe *OwnershipError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, KindDevice, oe.Kind)
	assert.Equal(t, d.ID, oe.AssetID)
	assert.Equal(t, a.ID, oe.OwnerID)
	assert.Equal(t, b.ID, oe.TargetID)

	inA, err := svc.ListConfigDevices(ctx, a.ID)
	require.NoError(t, err)
	inB, err := svc.ListConfigDevices(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{d.ID}, deviceIDs(inA))
	assert.Empty(t, inB)
}

func TestService_AssignLicenseFirstOwnerWins(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	l := f.licenses[0]

	require.NoError(t, svc.AssignLicense(ctx, a.ID, l.ID, ""))
	err := svc.AssignLicense(ctx, b.ID, l.ID, "")
	require.ErrorIs(t, err, ErrOwnershipConflict)

	owner, ok, err := svc.GetLicenseOwner(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.ID, owner)
}

func TestService_MoveDevice(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b, c := f.config(t, "A"), f.config(t, "B"), f.config(t, "C")
	d := f.devices[0]

	require.NoError(t, svc.AssignDevice(ctx, a.ID, d.ID))
	require.NoError(t, svc.MoveDevice(ctx, a.ID, a.ID, d.ID))
	require.NoError(t, svc.MoveDevice(ctx, a.ID, b.ID, d.ID))

	inA, err := svc.ListConfigDevices(ctx, a.ID)
	require.NoError(t, err)
	inB, err := svc.ListConfigDevices(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, inA)
	assert.Equal(t, []int64{d.ID}, deviceIDs(inB))

	err = svc.MoveDevice(ctx, c.ID, a.ID, d.ID)
	assert.ErrorIs(t, err, ErrOwnershipConflict, "device is in B, not C")

	require.NoError(t, svc.MoveDevice(ctx, a.ID, b.ID, d.ID), "already at destination")
}

func TestService_MoveFreeAssetAssigns(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")

	require.NoError(t, svc.MoveLicense(ctx, a.ID, b.ID, f.licenses[1].ID))

	owner, ok, err := svc.GetLicenseOwner(ctx, f.licenses[1].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, owner)
}

func TestService_Unassign(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	d, l := f.devices[0], f.licenses[0]

	require.NoError(t, svc.AssignDevice(ctx, a.ID, d.ID))
	require.NoError(t, svc.AssignLicense(ctx, a.ID, l.ID, ""))

	require.NoError(t, svc.UnassignDevice(ctx, b.ID, d.ID), "not held by B")
	_, ok, err := svc.GetDeviceOwner(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.UnassignDevice(ctx, a.ID, d.ID))
	require.NoError(t, svc.UnassignLicense(ctx, a.ID, l.ID))

	devices, err := svc.ListAssignedDeviceIDs(ctx)
	require.NoError(t, err)
	licenses, err := svc.ListAssignedLicenseIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.Empty(t, licenses)

	require.NoError(t, svc.AssignDevice(ctx, b.ID, d.ID), "free again")
}

func TestService_DeleteConfigFreesAssets(t *testing.T) {
	svc, f := newServiceFixture(t)
	ctx := context.Background()
	a, b := f.config(t, "A"), f.config(t, "B")
	d := f.devices[0]

	require.NoError(t, svc.AssignDevice(ctx, a.ID, d.ID))
	require.NoError(t, svc.DeleteConfig(ctx, a.ID))

	_, err := svc.GetConfig(ctx, a.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)
	require.NoError(t, svc.AssignDevice(ctx, b.ID, d.ID))

	assert.ErrorIs(t, svc.DeleteConfig(ctx, a.ID), ErrConfigNotFound)
}

func TestService_RecordsAudit(t *testing.T) {
	svc, f := newServiceFixture(t)
	auditRepo := audit.NewSQLiteRepository(f.db)
	svc.SetAuditor(auditRepo, "test")
	ctx := context.Background()

	c, err := svc.CreateConfig(ctx, "A", "", "")
	require.NoError(t, err)
	b := f.config(t, "B")
	require.NoError(t, svc.AssignDevice(ctx, c.ID, f.devices[0].ID))
	require.NoError(t, svc.MoveDevice(ctx, c.ID, b.ID, f.devices[0].ID))
	require.NoError(t, svc.RenameConfig(ctx, c.ID, "A2"))
	_ = svc.AssignDevice(ctx, c.ID, f.devices[0].ID) // rejected, not recorded

	history, err := auditRepo.List(ctx, audit.Filter{EntityID: strconv.FormatInt(c.ID, 10)})
	require.NoError(t, err)
	var actions []string
	for _, e := range history.Entries {
		actions = append(actions, e.Action)
		assert.Equal(t, "test", e.Source)
	}
	assert.Equal(t, []string{audit.ActionRename, audit.ActionAssign, audit.ActionCreate}, actions)

	moves, err := auditRepo.List(ctx, audit.Filter{Action: audit.ActionMove})
	require.NoError(t, err)
	require.Len(t, moves.Entries, 1)
	assert.Equal(t, strconv.FormatInt(b.ID, 10), moves.Entries[0].EntityID)
}

func TestService_AuditFailureDoesNotFailOperation(t *testing.T) {
	svc, _ := newServiceFixture(t)
	logger := &warnLogger{}
	svc.SetLogger(logger)
	svc.SetAuditor(failingAuditor{}, "test")

	_, err := svc.CreateConfig(context.Background(), "A", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"audit entry not recorded"}, logger.warnings)
}
