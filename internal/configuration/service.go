package configuration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/audit"
)

const maxNameLength = 200

// Logger defines the logging interface used by the configuration service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the configuration capability consumed by front-ends.
type Store interface {
	CreateConfig(ctx context.Context, name, note, configNo string) (*Configuration, error)
	ListConfigs(ctx context.Context) ([]Configuration, error)
	GetConfig(ctx context.Context, id int64) (*Configuration, error)
	FindConfig(ctx context.Context, configNo string) (*Configuration, error)
	RenameConfig(ctx context.Context, id int64, name string) error
	DeleteConfig(ctx context.Context, id int64) error

	ListConfigDevices(ctx context.Context, configID int64) ([]asset.Device, error)
	ListConfigLicenses(ctx context.Context, configID int64) ([]asset.License, error)
	ListAssignedDeviceIDs(ctx context.Context) ([]int64, error)
	ListAssignedLicenseIDs(ctx context.Context) ([]int64, error)
	GetDeviceOwner(ctx context.Context, deviceID int64) (int64, bool, error)
	GetLicenseOwner(ctx context.Context, licenseID int64) (int64, bool, error)

	AssignDevice(ctx context.Context, configID, deviceID int64) error
	MoveDevice(ctx context.Context, fromID, toID, deviceID int64) error
	UnassignDevice(ctx context.Context, configID, deviceID int64) error
	AssignLicense(ctx context.Context, configID, licenseID int64, note string) error
	MoveLicense(ctx context.Context, fromID, toID, licenseID int64) error
	UnassignLicense(ctx context.Context, configID, licenseID int64) error
}

// Service implements Store and enforces single ownership: an asset that
// belongs to one configuration is never silently taken by another.
//
// Thread Safety:
//   - Ownership check and write happen under one mutex.
type Service struct {
	repo   Repository
	logger Logger

	auditor     audit.Repository
	auditSource string

	mu sync.Mutex
}

var _ Store = (*Service)(nil)

// NewService creates a configuration service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// SetAuditor records every change to repo, tagged with source.
// A nil repo disables auditing.
func (s *Service) SetAuditor(repo audit.Repository, source string) {
	s.auditor = repo
	s.auditSource = source
}

// CreateConfig creates a configuration. An empty configNo is generated.
func (s *Service) CreateConfig(ctx context.Context, name, note, configNo string) (*Configuration, error) {
	name, err := normaliseName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, name, note, strings.TrimSpace(configNo))
	if err != nil {
		return nil, fmt.Errorf("creating configuration %q: %w", name, err)
	}

	s.logger.Info("configuration created", "config_id", c.ID, "config_no", c.ConfigNo)
	s.record(ctx, audit.ActionCreate, c.ID, map[string]any{"config_no": c.ConfigNo, "name": c.Name})
	return c, nil
}

// ListConfigs returns all configurations ordered by id.
func (s *Service) ListConfigs(ctx context.Context) ([]Configuration, error) {
	return s.repo.List(ctx)
}

// GetConfig returns a configuration by id.
func (s *Service) GetConfig(ctx context.Context, id int64) (*Configuration, error) {
	return s.repo.GetByID(ctx, id)
}

// FindConfig returns a configuration by number.
func (s *Service) FindConfig(ctx context.Context, configNo string) (*Configuration, error) {
	return s.repo.GetByConfigNo(ctx, configNo)
}

// RenameConfig changes a configuration's name. Number and id are unchanged.
func (s *Service) RenameConfig(ctx context.Context, id int64, name string) error {
	name, err := normaliseName(name)
	if err != nil {
		return err
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Rename(ctx, id, name); err != nil {
		return err
	}

	s.logger.Info("configuration renamed", "config_id", id, "name", name)
	s.record(ctx, audit.ActionRename, id, map[string]any{"from": before.Name, "to": name})
	return nil
}

// DeleteConfig removes a configuration. Its assets become unassigned.
func (s *Service) DeleteConfig(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("configuration deleted", "config_id", id, "config_no", c.ConfigNo)
	s.record(ctx, audit.ActionDelete, id, map[string]any{"config_no": c.ConfigNo, "name": c.Name})
	return nil
}

// ListConfigDevices returns the devices in a configuration, newest first.
func (s *Service) ListConfigDevices(ctx context.Context, configID int64) ([]asset.Device, error) {
	return s.repo.ListDevices(ctx, configID)
}

// ListConfigLicenses returns the licenses in a configuration, newest first.
func (s *Service) ListConfigLicenses(ctx context.Context, configID int64) ([]asset.License, error) {
	return s.repo.ListLicenses(ctx, configID)
}

// ListAssignedDeviceIDs returns ids of devices owned by any configuration.
func (s *Service) ListAssignedDeviceIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListAssignedDeviceIDs(ctx)
}

// ListAssignedLicenseIDs returns ids of licenses owned by any configuration.
func (s *Service) ListAssignedLicenseIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListAssignedLicenseIDs(ctx)
}

// GetDeviceOwner returns the configuration holding a device, if any.
func (s *Service) GetDeviceOwner(ctx context.Context, deviceID int64) (int64, bool, error) {
	return s.repo.GetDeviceOwner(ctx, deviceID)
}

// GetLicenseOwner returns the configuration holding a license, if any.
func (s *Service) GetLicenseOwner(ctx context.Context, licenseID int64) (int64, bool, error) {
	return s.repo.GetLicenseOwner(ctx, licenseID)
}

// AssignDevice puts a free device into a configuration. Assigning it to
// its current owner is a no-op; any other owner is an *OwnershipError.
func (s *Service) AssignDevice(ctx context.Context, configID, deviceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assign := func() error { return s.repo.AssignDevice(ctx, configID, deviceID) }
	return s.assign(ctx, KindDevice, configID, deviceID, s.repo.GetDeviceOwner, assign)
}

// AssignLicense puts a free license into a configuration, under the same
// first-owner-wins rule as devices.
func (s *Service) AssignLicense(ctx context.Context, configID, licenseID int64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assign := func() error { return s.repo.AssignLicense(ctx, configID, licenseID, note) }
	return s.assign(ctx, KindLicense, configID, licenseID, s.repo.GetLicenseOwner, assign)
}

// MoveDevice transfers a device between configurations atomically. The
// device must be in from or unassigned; from == to is a no-op.
func (s *Service) MoveDevice(ctx context.Context, fromID, toID, deviceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	move := func() error { return s.repo.MoveDevice(ctx, fromID, toID, deviceID) }
	return s.move(ctx, KindDevice, fromID, toID, deviceID, s.repo.GetDeviceOwner, move)
}

// MoveLicense transfers a license between configurations atomically.
func (s *Service) MoveLicense(ctx context.Context, fromID, toID, licenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	move := func() error { return s.repo.MoveLicense(ctx, fromID, toID, licenseID) }
	return s.move(ctx, KindLicense, fromID, toID, licenseID, s.repo.GetLicenseOwner, move)
}

// UnassignDevice removes a device from a configuration. Nothing happens
// when the configuration does not hold it.
func (s *Service) UnassignDevice(ctx context.Context, configID, deviceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unassign := func() error { return s.repo.UnassignDevice(ctx, configID, deviceID) }
	return s.unassign(ctx, KindDevice, configID, deviceID, s.repo.GetDeviceOwner, unassign)
}

// UnassignLicense removes a license from a configuration.
func (s *Service) UnassignLicense(ctx context.Context, configID, licenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unassign := func() error { return s.repo.UnassignLicense(ctx, configID, licenseID) }
	return s.unassign(ctx, KindLicense, configID, licenseID, s.repo.GetLicenseOwner, unassign)
}

type ownerLookup func(ctx context.Context, assetID int64) (int64, bool, error)

// assign must be called with s.mu held.
func (s *Service) assign(ctx context.Context, kind AssetKind, configID, assetID int64, owner ownerLookup, write func() error) error {
	current, owned, err := owner(ctx, assetID)
	if err != nil {
		return fmt.Errorf("looking up %s owner: %w", kind, err)
	}
	if owned {
		if current == configID {
			return nil
		}
		return &OwnershipError{Kind: kind, AssetID: assetID, OwnerID: current, TargetID: configID}
	}

	if err := write(); err != nil {
		return err
	}

	s.logger.Info(string(kind)+" assigned", "config_id", configID, "asset_id", assetID)
	s.record(ctx, audit.ActionAssign, configID, map[string]any{"asset_kind": string(kind), "asset_id": assetID})
	return nil
}

// move must be called with s.mu held.
func (s *Service) move(ctx context.Context, kind AssetKind, fromID, toID, assetID int64, owner ownerLookup, write func() error) error {
	if fromID == toID {
		return nil
	}

	current, owned, err := owner(ctx, assetID)
	if err != nil {
		return fmt.Errorf("looking up %s owner: %w", kind, err)
	}
	if owned && current == toID {
		return nil
	}
	if owned && current != fromID {
		return &OwnershipError{Kind: kind, AssetID: assetID, OwnerID: current, TargetID: toID}
	}

	if err := write(); err != nil {
		return err
	}

	s.logger.Info(string(kind)+" moved", "from_config_id", fromID, "to_config_id", toID, "asset_id", assetID)
	s.record(ctx, audit.ActionMove, toID, map[string]any{
		"asset_kind": string(kind), "asset_id": assetID, "from_config_id": fromID,
	})
	return nil
}

// unassign must be called with s.mu held.
func (s *Service) unassign(ctx context.Context, kind AssetKind, configID, assetID int64, owner ownerLookup, write func() error) error {
	current, owned, err := owner(ctx, assetID)
	if err != nil {
		return fmt.Errorf("looking up %s owner: %w", kind, err)
	}
	if !owned || current != configID {
		return nil
	}

	if err := write(); err != nil {
		return err
	}

	s.logger.Info(string(kind)+" unassigned", "config_id", configID, "asset_id", assetID)
	s.record(ctx, audit.ActionUnassign, configID, map[string]any{"asset_kind": string(kind), "asset_id": assetID})
	return nil
}

// record writes an audit entry after a committed change. Failures are
// logged and do not undo the change.
func (s *Service) record(ctx context.Context, action string, configID int64, details map[string]any) {
	if s.auditor == nil {
		return
	}
	entry := &audit.Entry{
		Action:     action,
		EntityType: audit.EntityConfiguration,
		EntityID:   strconv.FormatInt(configID, 10),
		Source:     s.auditSource,
		Details:    details,
	}
	if err := s.auditor.Create(ctx, entry); err != nil {
		s.logger.Warn("audit entry not recorded", "action", action, "config_id", configID, "error", err)
	}
}

// ValidateName reports whether name is acceptable for a configuration.
func ValidateName(name string) error {
	_, err := normaliseName(name)
	return err
}

func normaliseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return name, nil
}
