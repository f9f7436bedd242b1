package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

// configSummary is a configuration with its member counts.
type configSummary struct {
	configuration.Configuration
	Devices  int `json:"devices"`
	Licenses int `json:"licenses"`
}

// configDetail is a configuration with its members.
type configDetail struct {
	configuration.Configuration
	Devices  []asset.Device  `json:"devices"`
	Licenses []asset.License `json:"licenses"`
}

const timeLayout = "2006-01-02 15:04"

func (rt *runtime) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"configuration"},
		Short:   "Manage configurations",
	}

	var note, configNo string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.app.Configs.CreateConfig(cmd.Context(), args[0], note, configNo)
			if err != nil {
				return err
			}
			return rt.out.Message(c, rt.app.Labels.T("msg.config_created", "config_no", c.ConfigNo, "id", c.ID))
		},
	}
	create.Flags().StringVar(&note, "note", "", "free-form note")
	create.Flags().StringVar(&configNo, "config-no", "", "configuration number (default CNFG-<id>)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := rt.configSummaries(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out.Output(summaries, func(io.Writer) error {
				l := rt.app.Labels
				header := []string{
					l.T("col.id"), l.T("col.config_no"), l.T("col.name"), l.T("col.devices"),
					l.T("col.licenses"), l.T("col.updated_at"), l.T("col.note"),
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						strconv.FormatInt(s.ID, 10), s.ConfigNo, s.Name, strconv.Itoa(s.Devices),
						strconv.Itoa(s.Licenses), formatTime(s.UpdatedAt), s.Note,
					})
				}
				return rt.out.Table(header, rows)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id|config-no>",
		Short: "Show a configuration and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.config(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			detail, err := rt.configDetail(cmd.Context(), *c)
			if err != nil {
				return err
			}
			return rt.out.Output(detail, func(w io.Writer) error {
				return rt.writeConfigDetail(w, detail, "")
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id|config-no> <name>",
		Short: "Rename a configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rt.config(ctx, args[0])
			if err != nil {
				return err
			}
			if err := rt.app.Configs.RenameConfig(ctx, c.ID, args[1]); err != nil {
				return err
			}
			c, err = rt.app.Configs.GetConfig(ctx, c.ID)
			if err != nil {
				return err
			}
			return rt.out.Message(c, rt.app.Labels.T("msg.config_renamed", "config_no", c.ConfigNo, "name", c.Name))
		},
	}

	del := &cobra.Command{
		Use:   "delete <id|config-no>",
		Short: "Delete a configuration; its members become available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rt.config(ctx, args[0])
			if err != nil {
				return err
			}
			if err := rt.app.Configs.DeleteConfig(ctx, c.ID); err != nil {
				return err
			}
			if err := rt.app.View.Forget(ctx, c.ID); err != nil {
				rt.app.Log.Warn("view state not cleared", "config_id", c.ID, "error", err)
			}
			return rt.out.Message(c, rt.app.Labels.T("msg.config_deleted", "config_no", c.ConfigNo))
		},
	}

	cmd.AddCommand(create, list, show, rename, del)
	return cmd
}

func (rt *runtime) configSummaries(ctx context.Context) ([]configSummary, error) {
	configs, err := rt.app.Configs.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]configSummary, 0, len(configs))
	for _, c := range configs {
		detail, err := rt.configDetail(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, configSummary{Configuration: c, Devices: len(detail.Devices), Licenses: len(detail.Licenses)})
	}
	return out, nil
}

func (rt *runtime) configDetail(ctx context.Context, c configuration.Configuration) (configDetail, error) {
	devices, err := rt.app.Configs.ListConfigDevices(ctx, c.ID)
	if err != nil {
		return configDetail{}, err
	}
	licenses, err := rt.app.Configs.ListConfigLicenses(ctx, c.ID)
	if err != nil {
		return configDetail{}, err
	}
	if devices == nil {
		devices = []asset.Device{}
	}
	if licenses == nil {
		licenses = []asset.License{}
	}
	return configDetail{Configuration: c, Devices: devices, Licenses: licenses}, nil
}

// writeConfigDetail prints a configuration heading followed by its members.
func (rt *runtime) writeConfigDetail(w io.Writer, d configDetail, suffix string) error {
	l := rt.app.Labels
	if _, err := fmt.Fprintf(w, "%s  %s%s\n", d.ConfigNo, d.Name, suffix); err != nil {
		return err
	}
	if d.Note != "" {
		fmt.Fprintf(w, "  %s: %s\n", l.T("col.note"), d.Note)
	}
	if len(d.Devices) == 0 && len(d.Licenses) == 0 {
		_, err := fmt.Fprintf(w, "  %s\n", l.T("board.empty"))
		return err
	}
	for _, dev := range d.Devices {
		fmt.Fprintf(w, "  [%s] %s  %s  %s\n", l.T("kind.device"), dev.AssetNo, dev.Label(),
			l.StateDisplay("device.state", string(dev.State)))
	}
	for _, lic := range d.Licenses {
		fmt.Fprintf(w, "  [%s] %s  %s  %s\n", l.T("kind.license"), lic.LicenseNo, lic.Name,
			l.StateDisplay("license.state", string(lic.State)))
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
