package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/asset"
)

// deviceView is a device with its owning configuration.
type deviceView struct {
	asset.Device
	Owner string `json:"owner,omitempty"`
}

// licenseView is a license with its owning configuration.
type licenseView struct {
	asset.License
	Owner string `json:"owner,omitempty"`
}

func (rt *runtime) deviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Add and list devices",
	}

	var d asset.Device
	var name, state string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := rt.deviceState(state)
			if err != nil {
				return err
			}
			d.State = st
			d.DisplayName = asset.StringPtr(name)

			created, err := rt.app.Assets.AddDevice(cmd.Context(), d)
			if err != nil {
				return err
			}
			return rt.out.Message(created, rt.app.Labels.T("msg.device_added", "asset_no", created.AssetNo, "id", created.ID))
		},
	}
	f := add.Flags()
	f.StringVar(&d.AssetNo, "asset-no", "", "asset number (unique)")
	f.StringVar(&name, "name", "", "display name")
	f.StringVar(&d.DeviceType, "type", "", "device type")
	f.StringVar(&d.Model, "model", "", "model")
	f.StringVar(&d.Version, "version", "", "version")
	f.StringVar(&state, "state", "", "state (default active)")
	f.StringVar(&d.Note, "note", "", "free-form note")
	_ = add.MarkFlagRequired("asset-no") //nolint:errcheck // flag exists

	list := &cobra.Command{
		Use:   "list",
		Short: "List devices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := rt.app.Assets.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			views, err := rt.deviceViews(cmd.Context(), devices)
			if err != nil {
				return err
			}
			return rt.out.Output(views, func(io.Writer) error {
				return rt.out.Table(rt.deviceHeader(), rt.deviceRows(views))
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id|asset-no>",
		Short: "Show one device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rt.device(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			views, err := rt.deviceViews(cmd.Context(), []asset.Device{*d})
			if err != nil {
				return err
			}
			return rt.out.Output(views[0], func(w io.Writer) error {
				return rt.writeFields(w, rt.deviceHeader(), rt.deviceRows(views)[0])
			})
		},
	}

	cmd.AddCommand(add, list, show)
	return cmd
}

func (rt *runtime) licenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Add and list licenses",
	}

	var l asset.License
	var state string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a license",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := rt.licenseState(state)
			if err != nil {
				return err
			}
			l.State = st

			created, err := rt.app.Assets.AddLicense(cmd.Context(), l)
			if err != nil {
				return err
			}
			return rt.out.Message(created, rt.app.Labels.T("msg.license_added", "license_no", created.LicenseNo, "id", created.ID))
		},
	}
	f := add.Flags()
	f.StringVar(&l.LicenseNo, "license-no", "", "license number (default LIC-<id>)")
	f.StringVar(&l.Name, "name", "", "product name")
	f.StringVar(&l.LicenseKey, "key", "", "license key")
	f.StringVar(&state, "state", "", "state (default active)")
	f.StringVar(&l.Note, "note", "", "free-form note")
	_ = add.MarkFlagRequired("name") //nolint:errcheck // flag exists

	list := &cobra.Command{
		Use:   "list",
		Short: "List licenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			licenses, err := rt.app.Assets.ListLicenses(cmd.Context())
			if err != nil {
				return err
			}
			views, err := rt.licenseViews(cmd.Context(), licenses)
			if err != nil {
				return err
			}
			return rt.out.Output(views, func(io.Writer) error {
				return rt.out.Table(rt.licenseHeader(), rt.licenseRows(views))
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id|license-no>",
		Short: "Show one license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := rt.license(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			views, err := rt.licenseViews(cmd.Context(), []asset.License{*l})
			if err != nil {
				return err
			}
			return rt.out.Output(views[0], func(w io.Writer) error {
				return rt.writeFields(w, rt.licenseHeader(), rt.licenseRows(views)[0])
			})
		},
	}

	cmd.AddCommand(add, list, show)
	return cmd
}

func (rt *runtime) deviceViews(ctx context.Context, devices []asset.Device) ([]deviceView, error) {
	owners := make(map[int64]string)
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		id, ok, err := rt.app.Configs.GetDeviceOwner(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		v := deviceView{Device: d}
		if ok {
			if _, seen := owners[id]; !seen {
				owners[id] = rt.configNo(ctx, id)
			}
			v.Owner = owners[id]
		}
		views = append(views, v)
	}
	return views, nil
}

func (rt *runtime) licenseViews(ctx context.Context, licenses []asset.License) ([]licenseView, error) {
	owners := make(map[int64]string)
	views := make([]licenseView, 0, len(licenses))
	for _, l := range licenses {
		id, ok, err := rt.app.Configs.GetLicenseOwner(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		v := licenseView{License: l}
		if ok {
			if _, seen := owners[id]; !seen {
				owners[id] = rt.configNo(ctx, id)
			}
			v.Owner = owners[id]
		}
		views = append(views, v)
	}
	return views, nil
}

func (rt *runtime) deviceHeader() []string {
	l := rt.app.Labels
	return []string{
		l.T("col.id"), l.T("col.asset_no"), l.T("col.name"), l.T("col.type"),
		l.T("col.model"), l.T("col.version"), l.T("col.state"), l.T("col.owner"), l.T("col.note"),
	}
}

func (rt *runtime) deviceRows(views []deviceView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		name := ""
		if v.DisplayName != nil {
			name = *v.DisplayName
		}
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10), v.AssetNo, dash(name), v.DeviceType, v.Model, v.Version,
			rt.app.Labels.StateDisplay("device.state", string(v.State)), dash(v.Owner), v.Note,
		})
	}
	return rows
}

func (rt *runtime) licenseHeader() []string {
	l := rt.app.Labels
	return []string{
		l.T("col.id"), l.T("col.license_no"), l.T("col.name"), l.T("col.license_key"),
		l.T("col.state"), l.T("col.owner"), l.T("col.note"),
	}
}

func (rt *runtime) licenseRows(views []licenseView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10), v.LicenseNo, v.Name, v.LicenseKey,
			rt.app.Labels.StateDisplay("license.state", string(v.State)), dash(v.Owner), v.Note,
		})
	}
	return rows
}

// writeFields prints one record as "label: value" lines.
func (rt *runtime) writeFields(w io.Writer, labels, values []string) error {
	for i := range labels {
		if _, err := fmt.Fprintf(w, "%s: %s\n", labels[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
