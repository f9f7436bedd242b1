// Package exchange moves the domain inventory in and out of the database.
//
// A Snapshot identifies every entity by its business key (asset number,
// license number, configuration number), never by database id, so it can be
// imported into another database. View state is not part of a snapshot.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

// FormatVersion is written to every snapshot and checked on import.
const FormatVersion = 1

// Errors returned when reading or importing a snapshot.
var (
	ErrUnsupportedFormat = errors.New("exchange: unsupported snapshot format")
	ErrInvalidSnapshot   = errors.New("exchange: invalid snapshot")
)

// Snapshot is a portable copy of the inventory.
type Snapshot struct {
	FormatVersion  int             `json:"format_version"`
	ExportedAt     time.Time       `json:"exported_at"`
	Devices        []DeviceRecord  `json:"devices"`
	Licenses       []LicenseRecord `json:"licenses"`
	Configurations []ConfigRecord  `json:"configurations"`
}

// DeviceRecord is a device without its database id.
type DeviceRecord struct {
	AssetNo     string  `json:"asset_no"`
	DisplayName *string `json:"display_name,omitempty"`
	DeviceType  string  `json:"device_type"`
	Model       string  `json:"model"`
	Version     string  `json:"version"`
	State       string  `json:"state"`
	Note        string  `json:"note,omitempty"`
}

// LicenseRecord is a license without its database id.
type LicenseRecord struct {
	LicenseNo  string `json:"license_no"`
	Name       string `json:"name"`
	LicenseKey string `json:"license_key"`
	State      string `json:"state"`
	Note       string `json:"note,omitempty"`
}

func (r DeviceRecord) device() asset.Device {
	return asset.Device{
		AssetNo:     r.AssetNo,
		DisplayName: r.DisplayName,
		DeviceType:  r.DeviceType,
		Model:       r.Model,
		Version:     r.Version,
		State:       asset.DeviceState(r.State),
		Note:        r.Note,
	}
}

func (r LicenseRecord) license() asset.License {
	return asset.License{
		LicenseNo:  r.LicenseNo,
		Name:       r.Name,
		LicenseKey: r.LicenseKey,
		State:      asset.LicenseState(r.State),
		Note:       r.Note,
	}
}

// ConfigRecord is a configuration with its members referenced by key.
type ConfigRecord struct {
	ConfigNo  string    `json:"config_no"`
	Name      string    `json:"name"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Devices   []string  `json:"devices"`
	Licenses  []string  `json:"licenses"`
}

// Export reads the whole inventory. Devices and licenses are listed oldest
// first so that importing a snapshot preserves their relative order.
func Export(ctx context.Context, assets asset.Store, configs configuration.Store) (*Snapshot, error) {
	devices, err := assets.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	licenses, err := assets.ListLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing licenses: %w", err)
	}
	cfgs, err := configs.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing configurations: %w", err)
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	sort.Slice(licenses, func(i, j int) bool { return licenses[i].ID < licenses[j].ID })

	snap := &Snapshot{
		FormatVersion:  FormatVersion,
		ExportedAt:     time.Now().UTC(),
		Devices:        make([]DeviceRecord, 0, len(devices)),
		Licenses:       make([]LicenseRecord, 0, len(licenses)),
		Configurations: make([]ConfigRecord, 0, len(cfgs)),
	}
	for _, d := range devices {
		snap.Devices = append(snap.Devices, DeviceRecord{
			AssetNo:     d.AssetNo,
			DisplayName: d.DisplayName,
			DeviceType:  d.DeviceType,
			Model:       d.Model,
			Version:     d.Version,
			State:       string(d.State),
			Note:        d.Note,
		})
	}
	for _, l := range licenses {
		snap.Licenses = append(snap.Licenses, LicenseRecord{
			LicenseNo:  l.LicenseNo,
			Name:       l.Name,
			LicenseKey: l.LicenseKey,
			State:      string(l.State),
			Note:       l.Note,
		})
	}

	for _, c := range cfgs {
		rec := ConfigRecord{
			ConfigNo:  c.ConfigNo,
			Name:      c.Name,
			Note:      c.Note,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Devices:   []string{},
			Licenses:  []string{},
		}
		members, err := configs.ListConfigDevices(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("listing devices of %s: %w", c.ConfigNo, err)
		}
		for i := len(members) - 1; i >= 0; i-- {
			rec.Devices = append(rec.Devices, members[i].AssetNo)
		}
		lics, err := configs.ListConfigLicenses(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("listing licenses of %s: %w", c.ConfigNo, err)
		}
		for i := len(lics) - 1; i >= 0; i-- {
			rec.Licenses = append(rec.Licenses, lics[i].LicenseNo)
		}
		snap.Configurations = append(snap.Configurations, rec)
	}

	return snap, nil
}

// WriteJSON writes an indented snapshot.
func WriteJSON(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a snapshot.
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks that the snapshot is self-consistent and that every record
// would be accepted by the domain services. Keys must be present and unique,
// members must refer to entities in the snapshot, and no asset may be listed
// under two configurations. Import relies on this to never stop halfway.
func (s *Snapshot) Validate() error {
	if s.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedFormat, s.FormatVersion)
	}

	devices := make(map[string]bool, len(s.Devices))
	for i, d := range s.Devices {
		if d.AssetNo == "" {
			return fmt.Errorf("%w: device %d has no asset number", ErrInvalidSnapshot, i+1)
		}
		if d.AssetNo != strings.TrimSpace(d.AssetNo) {
			return fmt.Errorf("%w: asset number %q has surrounding spaces", ErrInvalidSnapshot, d.AssetNo)
		}
		if devices[d.AssetNo] {
			return fmt.Errorf("%w: duplicate asset number %q", ErrInvalidSnapshot, d.AssetNo)
		}
		devices[d.AssetNo] = true

		dev := d.device()
		if err := asset.ValidateDevice(&dev); err != nil {
			return fmt.Errorf("%w: device %q: %w", ErrInvalidSnapshot, d.AssetNo, err)
		}
	}

	licenses := make(map[string]bool, len(s.Licenses))
	for i, l := range s.Licenses {
		if l.LicenseNo == "" {
			return fmt.Errorf("%w: license %d has no license number", ErrInvalidSnapshot, i+1)
		}
		if l.LicenseNo != strings.TrimSpace(l.LicenseNo) {
			return fmt.Errorf("%w: license number %q has surrounding spaces", ErrInvalidSnapshot, l.LicenseNo)
		}
		if licenses[l.LicenseNo] {
			return fmt.Errorf("%w: duplicate license number %q", ErrInvalidSnapshot, l.LicenseNo)
		}
		licenses[l.LicenseNo] = true

		lic := l.license()
		if err := asset.ValidateLicense(&lic); err != nil {
			return fmt.Errorf("%w: license %q: %w", ErrInvalidSnapshot, l.LicenseNo, err)
		}
	}

	configs := make(map[string]bool, len(s.Configurations))
	deviceOwner := make(map[string]string)
	licenseOwner := make(map[string]string)
	for i, c := range s.Configurations {
		if c.ConfigNo == "" {
			return fmt.Errorf("%w: configuration %d has no configuration number", ErrInvalidSnapshot, i+1)
		}
		if c.ConfigNo != strings.TrimSpace(c.ConfigNo) {
			return fmt.Errorf("%w: configuration number %q has surrounding spaces", ErrInvalidSnapshot, c.ConfigNo)
		}
		if configs[c.ConfigNo] {
			return fmt.Errorf("%w: duplicate configuration number %q", ErrInvalidSnapshot, c.ConfigNo)
		}
		configs[c.ConfigNo] = true
		if err := configuration.ValidateName(c.Name); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, c.ConfigNo, err)
		}

		for _, key := range c.Devices {
			if !devices[key] {
				return fmt.Errorf("%w: %s lists unknown device %q", ErrInvalidSnapshot, c.ConfigNo, key)
			}
			if owner, ok := deviceOwner[key]; ok && owner != c.ConfigNo {
				return fmt.Errorf("%w: device %q is in both %s and %s", ErrInvalidSnapshot, key, owner, c.ConfigNo)
			}
			deviceOwner[key] = c.ConfigNo
		}
		for _, key := range c.Licenses {
			if !licenses[key] {
				return fmt.Errorf("%w: %s lists unknown license %q", ErrInvalidSnapshot, c.ConfigNo, key)
			}
			if owner, ok := licenseOwner[key]; ok && owner != c.ConfigNo {
				return fmt.Errorf("%w: license %q is in both %s and %s", ErrInvalidSnapshot, key, owner, c.ConfigNo)
			}
			licenseOwner[key] = c.ConfigNo
		}
	}
	return nil
}
