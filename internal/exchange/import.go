package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

// Result counts what an import changed.
type Result struct {
	DevicesAdded    int `json:"devices_added"`
	DevicesSkipped  int `json:"devices_skipped"`
	LicensesAdded   int `json:"licenses_added"`
	LicensesSkipped int `json:"licenses_skipped"`
	ConfigsAdded    int `json:"configs_added"`
	ConfigsSkipped  int `json:"configs_skipped"`
	Assigned        int `json:"assigned"`

	// AlreadyAssigned counts memberships the target database already had.
	AlreadyAssigned int `json:"already_assigned"`

	// Conflicts lists memberships that were not applied because the asset
	// already belongs to another configuration in the target database.
	Conflicts []string `json:"conflicts"`
}

// Import merges a snapshot into the stores. Entities whose business key
// already exists are reused as they are. Memberships go through the
// configuration service, so an asset already owned elsewhere stays where it
// is and is reported in Result.Conflicts.
func Import(ctx context.Context, snap *Snapshot, assets asset.Store, configs configuration.Store) (*Result, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	res := &Result{Conflicts: []string{}}

	deviceIDs := make(map[string]int64, len(snap.Devices))
	for _, rec := range snap.Devices {
		existing, err := assets.FindDevice(ctx, rec.AssetNo)
		switch {
		case err == nil:
			deviceIDs[rec.AssetNo] = existing.ID
			res.DevicesSkipped++
			continue
		case !errors.Is(err, asset.ErrDeviceNotFound):
			return res, fmt.Errorf("looking up device %s: %w", rec.AssetNo, err)
		}

		d, err := assets.AddDevice(ctx, rec.device())
		if err != nil {
			return res, err
		}
		deviceIDs[rec.AssetNo] = d.ID
		res.DevicesAdded++
	}

	licenseIDs := make(map[string]int64, len(snap.Licenses))
	for _, rec := range snap.Licenses {
		existing, err := assets.FindLicense(ctx, rec.LicenseNo)
		switch {
		case err == nil:
			licenseIDs[rec.LicenseNo] = existing.ID
			res.LicensesSkipped++
			continue
		case !errors.Is(err, asset.ErrLicenseNotFound):
			return res, fmt.Errorf("looking up license %s: %w", rec.LicenseNo, err)
		}

		l, err := assets.AddLicense(ctx, rec.license())
		if err != nil {
			return res, err
		}
		licenseIDs[rec.LicenseNo] = l.ID
		res.LicensesAdded++
	}

	for _, rec := range snap.Configurations {
		c, err := configs.FindConfig(ctx, rec.ConfigNo)
		switch {
		case err == nil:
			res.ConfigsSkipped++
		case errors.Is(err, configuration.ErrConfigNotFound):
			if c, err = configs.CreateConfig(ctx, rec.Name, rec.Note, rec.ConfigNo); err != nil {
				return res, err
			}
			res.ConfigsAdded++
		default:
			return res, fmt.Errorf("looking up configuration %s: %w", rec.ConfigNo, err)
		}

		for _, key := range rec.Devices {
			id := deviceIDs[key]
			owner, ok, err := configs.GetDeviceOwner(ctx, id)
			if err != nil {
				return res, fmt.Errorf("reading owner of device %s: %w", key, err)
			}
			if ok && owner == c.ID {
				res.AlreadyAssigned++
				continue
			}
			err = configs.AssignDevice(ctx, c.ID, id)
			if err := tally(res, err, rec.ConfigNo, "device", key); err != nil {
				return res, err
			}
		}
		for _, key := range rec.Licenses {
			id := licenseIDs[key]
			owner, ok, err := configs.GetLicenseOwner(ctx, id)
			if err != nil {
				return res, fmt.Errorf("reading owner of license %s: %w", key, err)
			}
			if ok && owner == c.ID {
				res.AlreadyAssigned++
				continue
			}
			err = configs.AssignLicense(ctx, c.ID, id, "")
			if err := tally(res, err, rec.ConfigNo, "license", key); err != nil {
				return res, err
			}
		}
	}

	return res, nil
}

func tally(res *Result, err error, configNo, kind, key string) error {
	var oe *configuration.OwnershipError
	switch {
	case err == nil:
		res.Assigned++
		return nil
	case errors.As(err, &oe):
		res.Conflicts = append(res.Conflicts,
			fmt.Sprintf("%s %s: already in configuration %d, not added to %s", kind, key, oe.OwnerID, configNo))
		return nil
	default:
		return fmt.Errorf("assigning %s %s to %s: %w", kind, key, configNo, err)
	}
}
