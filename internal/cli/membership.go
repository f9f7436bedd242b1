package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

// membership is the JSON result of assign, unassign and move.
type membership struct {
	Kind   configuration.AssetKind `json:"kind"`
	Asset  string                  `json:"asset"`
	Config string                  `json:"config_no,omitempty"`
	From   string                  `json:"from,omitempty"`
	To     string                  `json:"to,omitempty"`
}

// ownership is the JSON result of owner.
type ownership struct {
	Kind     configuration.AssetKind `json:"kind"`
	Asset    string                  `json:"asset"`
	Assigned bool                    `json:"assigned"`
	ConfigNo string                  `json:"config_no,omitempty"`
	Name     string                  `json:"name,omitempty"`
}

// assetRef is a resolved device or license argument.
type assetRef struct {
	kind configuration.AssetKind
	id   int64
	key  string
}

func (rt *runtime) resolveAsset(ctx context.Context, kind configuration.AssetKind, ref string) (assetRef, error) {
	if kind == configuration.KindDevice {
		d, err := rt.device(ctx, ref)
		if err != nil {
			return assetRef{}, err
		}
		return assetRef{kind: kind, id: d.ID, key: d.AssetNo}, nil
	}
	l, err := rt.license(ctx, ref)
	if err != nil {
		return assetRef{}, err
	}
	return assetRef{kind: kind, id: l.ID, key: l.LicenseNo}, nil
}

// kindCommands builds "<verb> device" and "<verb> license" subcommands.
func kindCommands(parent *cobra.Command, use string, args cobra.PositionalArgs,
	build func(kind configuration.AssetKind) func(cmd *cobra.Command, args []string) error,
	flags func(cmd *cobra.Command, kind configuration.AssetKind),
) *cobra.Command {
	for _, kind := range []configuration.AssetKind{configuration.KindDevice, configuration.KindLicense} {
		sub := &cobra.Command{
			Use:  string(kind) + " " + use,
			Args: args,
			RunE: build(kind),
		}
		sub.Short = fmt.Sprintf("%s a %s", parent.Short, kind)
		if flags != nil {
			flags(sub, kind)
		}
		parent.AddCommand(sub)
	}
	return parent
}

func (rt *runtime) assignCommand() *cobra.Command {
	var note string
	return kindCommands(
		&cobra.Command{Use: "assign", Short: "Assign"},
		"<config> <asset>", cobra.ExactArgs(2),
		func(kind configuration.AssetKind) func(*cobra.Command, []string) error {
			return func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := rt.config(ctx, args[0])
				if err != nil {
					return err
				}
				a, err := rt.resolveAsset(ctx, kind, args[1])
				if err != nil {
					return err
				}
				if kind == configuration.KindDevice {
					err = rt.app.Configs.AssignDevice(ctx, c.ID, a.id)
				} else {
					err = rt.app.Configs.AssignLicense(ctx, c.ID, a.id, note)
				}
				if err != nil {
					return rt.explain(ctx, err, a.key)
				}
				return rt.out.Message(membership{Kind: kind, Asset: a.key, Config: c.ConfigNo},
					rt.app.Labels.T("msg.assigned", "asset", a.key, "config_no", c.ConfigNo))
			}
		},
		func(cmd *cobra.Command, kind configuration.AssetKind) {
			if kind == configuration.KindLicense {
				cmd.Flags().StringVar(&note, "note", "", "note stored with the assignment")
			}
		},
	)
}

func (rt *runtime) unassignCommand() *cobra.Command {
	return kindCommands(
		&cobra.Command{Use: "unassign", Short: "Unassign"},
		"<config> <asset>", cobra.ExactArgs(2),
		func(kind configuration.AssetKind) func(*cobra.Command, []string) error {
			return func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := rt.config(ctx, args[0])
				if err != nil {
					return err
				}
				a, err := rt.resolveAsset(ctx, kind, args[1])
				if err != nil {
					return err
				}
				if kind == configuration.KindDevice {
					err = rt.app.Configs.UnassignDevice(ctx, c.ID, a.id)
				} else {
					err = rt.app.Configs.UnassignLicense(ctx, c.ID, a.id)
				}
				if err != nil {
					return err
				}
				return rt.out.Message(membership{Kind: kind, Asset: a.key, Config: c.ConfigNo},
					rt.app.Labels.T("msg.unassigned", "asset", a.key, "config_no", c.ConfigNo))
			}
		},
		nil,
	)
}

func (rt *runtime) moveCommand() *cobra.Command {
	return kindCommands(
		&cobra.Command{Use: "move", Short: "Move"},
		"<from-config> <to-config> <asset>", cobra.ExactArgs(3),
		func(kind configuration.AssetKind) func(*cobra.Command, []string) error {
			return func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				from, err := rt.config(ctx, args[0])
				if err != nil {
					return err
				}
				to, err := rt.config(ctx, args[1])
				if err != nil {
					return err
				}
				a, err := rt.resolveAsset(ctx, kind, args[2])
				if err != nil {
					return err
				}
				if kind == configuration.KindDevice {
					err = rt.app.Configs.MoveDevice(ctx, from.ID, to.ID, a.id)
				} else {
					err = rt.app.Configs.MoveLicense(ctx, from.ID, to.ID, a.id)
				}
				if err != nil {
					return rt.explain(ctx, err, a.key)
				}
				return rt.out.Message(membership{Kind: kind, Asset: a.key, From: from.ConfigNo, To: to.ConfigNo},
					rt.app.Labels.T("msg.moved", "asset", a.key, "from", from.ConfigNo, "to", to.ConfigNo))
			}
		},
		nil,
	)
}

func (rt *runtime) ownerCommand() *cobra.Command {
	return kindCommands(
		&cobra.Command{Use: "owner", Short: "Show the configuration owning"},
		"<asset>", cobra.ExactArgs(1),
		func(kind configuration.AssetKind) func(*cobra.Command, []string) error {
			return func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := rt.resolveAsset(ctx, kind, args[0])
				if err != nil {
					return err
				}
				var (
					ownerID int64
					ok      bool
				)
				if kind == configuration.KindDevice {
					ownerID, ok, err = rt.app.Configs.GetDeviceOwner(ctx, a.id)
				} else {
					ownerID, ok, err = rt.app.Configs.GetLicenseOwner(ctx, a.id)
				}
				if err != nil {
					return err
				}

				res := ownership{Kind: kind, Asset: a.key, Assigned: ok}
				if !ok {
					return rt.out.Message(res, rt.app.Labels.T("msg.no_owner", "asset", a.key))
				}
				c, err := rt.app.Configs.GetConfig(ctx, ownerID)
				if err != nil {
					return err
				}
				res.ConfigNo, res.Name = c.ConfigNo, c.Name
				return rt.out.Message(res,
					rt.app.Labels.T("msg.owner", "asset", a.key, "config_no", c.ConfigNo, "name", c.Name))
			}
		},
		nil,
	)
}

// available is the JSON result of the available command.
type available struct {
	Devices  []asset.Device  `json:"devices"`
	Licenses []asset.License `json:"licenses"`
}

func (rt *runtime) availableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List devices and licenses not in any configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := rt.available(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out.Output(res, func(w io.Writer) error {
				l := rt.app.Labels
				fmt.Fprintln(w, l.T("section.available_devices"))
				if err := rt.out.Table(rt.deviceHeader()[:7], trimRows(rt.deviceRows(toDeviceViews(res.Devices)), 7)); err != nil {
					return err
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, l.T("section.available_licenses"))
				return rt.out.Table(rt.licenseHeader()[:5], trimRows(rt.licenseRows(toLicenseViews(res.Licenses)), 5))
			})
		},
	}
}

func (rt *runtime) available(ctx context.Context) (available, error) {
	res := available{Devices: []asset.Device{}, Licenses: []asset.License{}}

	devices, err := rt.app.Assets.ListDevices(ctx)
	if err != nil {
		return res, err
	}
	assignedDevices, err := rt.app.Configs.ListAssignedDeviceIDs(ctx)
	if err != nil {
		return res, err
	}
	for _, d := range devices {
		if !slices.Contains(assignedDevices, d.ID) {
			res.Devices = append(res.Devices, d)
		}
	}

	licenses, err := rt.app.Assets.ListLicenses(ctx)
	if err != nil {
		return res, err
	}
	assignedLicenses, err := rt.app.Configs.ListAssignedLicenseIDs(ctx)
	if err != nil {
		return res, err
	}
	for _, l := range licenses {
		if !slices.Contains(assignedLicenses, l.ID) {
			res.Licenses = append(res.Licenses, l)
		}
	}
	return res, nil
}

func toDeviceViews(devices []asset.Device) []deviceView {
	views := make([]deviceView, len(devices))
	for i, d := range devices {
		views[i] = deviceView{Device: d}
	}
	return views
}

func toLicenseViews(licenses []asset.License) []licenseView {
	views := make([]licenseView, len(licenses))
	for i, l := range licenses {
		views[i] = licenseView{License: l}
	}
	return views
}

func trimRows(rows [][]string, n int) [][]string {
	for i := range rows {
		rows[i] = rows[i][:n]
	}
	return rows
}
