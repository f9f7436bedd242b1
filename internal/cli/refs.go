package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

// Entity arguments accept either the business key (asset number, license
// number, configuration number) or the numeric id. The key wins, so an
// asset numbered "12" is found by "12" even when some other row has id 12.

func (rt *runtime) device(ctx context.Context, ref string) (*asset.Device, error) {
	d, err := rt.app.Assets.FindDevice(ctx, ref)
	if id, ok := fallbackID(err, asset.ErrDeviceNotFound, ref); ok {
		return rt.app.Assets.GetDevice(ctx, id)
	}
	return d, err
}

func (rt *runtime) license(ctx context.Context, ref string) (*asset.License, error) {
	l, err := rt.app.Assets.FindLicense(ctx, ref)
	if id, ok := fallbackID(err, asset.ErrLicenseNotFound, ref); ok {
		return rt.app.Assets.GetLicense(ctx, id)
	}
	return l, err
}

func (rt *runtime) config(ctx context.Context, ref string) (*configuration.Configuration, error) {
	c, err := rt.app.Configs.FindConfig(ctx, ref)
	if id, ok := fallbackID(err, configuration.ErrConfigNotFound, ref); ok {
		return rt.app.Configs.GetConfig(ctx, id)
	}
	return c, err
}

// fallbackID reports whether a failed key lookup should be retried by id.
func fallbackID(err, notFound error, ref string) (int64, bool) {
	if !errors.Is(err, notFound) {
		return 0, false
	}
	id, perr := strconv.ParseInt(ref, 10, 64)
	return id, perr == nil
}

// configNo returns the configuration number for id, or the id itself when
// the configuration cannot be read.
func (rt *runtime) configNo(ctx context.Context, id int64) string {
	c, err := rt.app.Configs.GetConfig(ctx, id)
	if err != nil {
		return strconv.FormatInt(id, 10)
	}
	return c.ConfigNo
}

// deviceState accepts a stored state value or its display label.
func (rt *runtime) deviceState(input string) (asset.DeviceState, error) {
	values := make([]string, 0, len(asset.AllDeviceStates()))
	for _, s := range asset.AllDeviceStates() {
		values = append(values, string(s))
	}
	v, err := rt.state("device.state", input, values)
	return asset.DeviceState(v), err
}

// licenseState accepts a stored state value or its display label.
func (rt *runtime) licenseState(input string) (asset.LicenseState, error) {
	values := make([]string, 0, len(asset.AllLicenseStates()))
	for _, s := range asset.AllLicenseStates() {
		values = append(values, string(s))
	}
	v, err := rt.state("license.state", input, values)
	return asset.LicenseState(v), err
}

func (rt *runtime) state(prefix, input string, values []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return values[0], nil
	}
	v := rt.app.Labels.StateToPhysical(prefix, input, "")
	if v == "" {
		// Unlabelled values are still accepted as stored.
		v = input
	}
	if slices.Contains(values, v) {
		return v, nil
	}
	choices := strings.Join(rt.app.Labels.StatesDisplay(prefix, values), ", ")
	return "", errors.New(rt.app.Labels.T("error.invalid_state", "value", input, "choices", choices))
}

// explain rewrites ownership conflicts into a labelled message. Other errors
// pass through unchanged.
func (rt *runtime) explain(ctx context.Context, err error, assetRef string) error {
	var oe *configuration.OwnershipError
	if !errors.As(err, &oe) {
		return err
	}
	msg := rt.app.Labels.T("error.ownership_conflict",
		"kind", rt.app.Labels.T("kind."+string(oe.Kind)),
		"asset", assetRef,
		"owner", rt.configNo(ctx, oe.OwnerID),
	)
	return fmt.Errorf("%s: %w", msg, configuration.ErrOwnershipConflict)
}
