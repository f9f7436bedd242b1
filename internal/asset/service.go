package asset

import (
	"context"
	"fmt"
)

// Logger defines the logging interface used by the asset service.
// This allows the package to remain decoupled from specific logging implementations.
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

// Store is the asset capability consumed by front-ends (CLI, GUI, tests).
type Store interface {
	AddDevice(ctx context.Context, d Device) (*Device, error)
	ListDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, id int64) (*Device, error)
	FindDevice(ctx context.Context, assetNo string) (*Device, error)

	AddLicense(ctx context.Context, l License) (*License, error)
	ListLicenses(ctx context.Context) ([]License, error)
	GetLicense(ctx context.Context, id int64) (*License, error)
	FindLicense(ctx context.Context, licenseNo string) (*License, error)
}

// Service implements Store over the device and license repositories.
type Service struct {
	devices  DeviceRepository
	licenses LicenseRepository
	logger   Logger
}

var _ Store = (*Service)(nil)

// NewService creates an asset service.
func NewService(devices DeviceRepository, licenses LicenseRepository) *Service {
	return &Service{
		devices:  devices,
		licenses: licenses,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// AddDevice validates and stores a new device.
func (s *Service) AddDevice(ctx context.Context, d Device) (*Device, error) {
	if err := ValidateDevice(&d); err != nil {
		return nil, err
	}

	created, err := s.devices.Create(ctx, &d)
	if err != nil {
		return nil, fmt.Errorf("adding device %s: %w", d.AssetNo, err)
	}

	s.logger.Info("device added", "device_id", created.ID, "asset_no", created.AssetNo)
	return created, nil
}

// ListDevices returns all devices, newest first.
func (s *Service) ListDevices(ctx context.Context) ([]Device, error) {
	return s.devices.List(ctx)
}

// GetDevice returns a device by id.
func (s *Service) GetDevice(ctx context.Context, id int64) (*Device, error) {
	return s.devices.GetByID(ctx, id)
}

// FindDevice returns a device by asset number.
func (s *Service) FindDevice(ctx context.Context, assetNo string) (*Device, error) {
	return s.devices.GetByAssetNo(ctx, assetNo)
}

// AddLicense validates and stores a new license.
func (s *Service) AddLicense(ctx context.Context, l License) (*License, error) {
	if err := ValidateLicense(&l); err != nil {
		return nil, err
	}

	created, err := s.licenses.Create(ctx, &l)
	if err != nil {
		return nil, fmt.Errorf("adding license %s: %w", l.Name, err)
	}

	s.logger.Info("license added", "license_id", created.ID, "license_no", created.LicenseNo)
	return created, nil
}

// ListLicenses returns all licenses, newest first.
func (s *Service) ListLicenses(ctx context.Context) ([]License, error) {
	return s.licenses.List(ctx)
}

// GetLicense returns a license by id.
func (s *Service) GetLicense(ctx context.Context, id int64) (*License, error) {
	return s.licenses.GetByID(ctx, id)
}

// FindLicense returns a license by license number.
func (s *Service) FindLicense(ctx context.Context, licenseNo string) (*License, error) {
	return s.licenses.GetByLicenseNo(ctx, licenseNo)
}
