package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/audit"
	"github.com/nerrad567/asset-desk/internal/configuration"
	"github.com/nerrad567/asset-desk/internal/exchange"
	"github.com/nerrad567/asset-desk/internal/seed"
)

func (rt *runtime) exportCommand() *cobra.Command {
	var file, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export devices, licenses and configurations",
		Long: `Export writes the inventory as JSON (default) or an XLSX workbook.
JSON goes to stdout unless --file is given; XLSX needs --file.
Board layout is not exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = "json"
				if strings.EqualFold(filepath.Ext(file), ".xlsx") {
					format = "xlsx"
				}
			}
			if format != "json" && format != "xlsx" {
				return fmt.Errorf("invalid export format: %s (must be 'json' or 'xlsx')", format)
			}
			if format == "xlsx" && file == "" {
				return errors.New("xlsx export needs --file")
			}

			snap, err := exchange.Export(cmd.Context(), rt.app.Assets, rt.app.Configs)
			if err != nil {
				return err
			}

			if file == "" {
				return exchange.WriteJSON(cmd.OutOrStdout(), snap)
			}
			f, err := os.Create(file) //nolint:gosec // path chosen by the user
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if format == "xlsx" {
				err = exchange.WriteXLSX(f, snap)
			} else {
				err = exchange.WriteJSON(f, snap)
			}
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("closing export file: %w", closeErr)
			}
			if err != nil {
				return err
			}

			summary := map[string]any{
				"file":           file,
				"format":         format,
				"devices":        len(snap.Devices),
				"licenses":       len(snap.Licenses),
				"configurations": len(snap.Configurations),
			}
			return rt.out.Message(summary, rt.app.Labels.T("msg.exported",
				"devices", len(snap.Devices), "licenses", len(snap.Licenses),
				"configs", len(snap.Configurations), "file", file))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file")
	cmd.Flags().StringVar(&format, "format", "", "json or xlsx (default from the file extension, else json)")
	return cmd
}

func (rt *runtime) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import a JSON export; existing numbers are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			snap, err := exchange.ReadJSON(r)
			if err != nil {
				return err
			}
			res, err := exchange.Import(cmd.Context(), snap, rt.app.Assets, rt.app.Configs)
			if err != nil {
				return err
			}

			return rt.out.Output(res, func(w io.Writer) error {
				fmt.Fprintln(w, rt.app.Labels.T("msg.imported",
					"devices_added", res.DevicesAdded, "licenses_added", res.LicensesAdded,
					"configs_added", res.ConfigsAdded, "assigned", res.Assigned,
					"already_assigned", res.AlreadyAssigned))
				for _, c := range res.Conflicts {
					fmt.Fprintln(w, rt.app.Labels.T("msg.import_conflict", "detail", c))
				}
				return nil
			})
		},
	}
}

func (rt *runtime) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample data into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, seeded, err := seed.SampleData(cmd.Context(), rt.app.Assets, rt.app.Configs)
			if err != nil {
				return err
			}
			out := map[string]any{
				"seeded":         seeded,
				"devices":        res.Devices,
				"licenses":       res.Licenses,
				"configurations": res.Configurations,
			}
			if !seeded {
				return rt.out.Message(out, rt.app.Labels.T("msg.seed_skipped"))
			}
			return rt.out.Message(out, rt.app.Labels.T("msg.seeded",
				"devices", res.Devices, "licenses", res.Licenses, "configs", res.Configurations))
		},
	}
}

// migrationState is one row of migrate status.
type migrationState struct {
	Version string `json:"version"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}

func (rt *runtime) migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect the database schema",
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "List applied and pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, pending, err := rt.app.DB().GetMigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			states := make([]migrationState, 0, len(applied)+len(pending))
			for _, m := range applied {
				states = append(states, migrationState{Version: m.Version, Name: m.Name, Applied: true})
			}
			for _, m := range pending {
				states = append(states, migrationState{Version: m.Version, Name: m.Name})
			}

			return rt.out.Output(states, func(io.Writer) error {
				l := rt.app.Labels
				rows := make([][]string, 0, len(states))
				for _, s := range states {
					st := l.T("migrate.pending")
					if s.Applied {
						st = l.T("migrate.applied")
					}
					rows = append(rows, []string{s.Version, s.Name, st})
				}
				return rt.out.Table([]string{l.T("col.version"), l.T("col.name"), l.T("col.status")}, rows)
			})
		},
	}
	cmd.AddCommand(status)
	return cmd
}

func (rt *runtime) historyCommand() *cobra.Command {
	var filter audit.Filter
	var configRef string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			filter.EntityType = audit.EntityConfiguration
			if configRef != "" {
				c, err := rt.config(ctx, configRef)
				if err != nil {
					return err
				}
				filter.EntityID = strconv.FormatInt(c.ID, 10)
			}

			res, err := rt.app.Audit.List(ctx, filter)
			if err != nil {
				return err
			}

			return rt.out.Output(res, func(io.Writer) error {
				l := rt.app.Labels
				rows := make([][]string, 0, len(res.Entries))
				for _, e := range res.Entries {
					id, _ := strconv.ParseInt(e.EntityID, 10, 64)
					rows = append(rows, []string{
						formatTime(e.CreatedAt), l.T("action." + e.Action),
						rt.historyTarget(cmd, id, e), formatDetails(e.Details),
					})
				}
				return rt.out.Table([]string{l.T("col.time"), l.T("col.action"), l.T("col.config"), l.T("col.details")}, rows)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Action, "action", "", "only this action (create, rename, delete, assign, unassign, move)")
	f.StringVar(&configRef, "config-no", "", "only this configuration")
	f.IntVar(&filter.Limit, "limit", audit.DefaultLimit, "entries per page")
	f.IntVar(&filter.Offset, "offset", 0, "entries to skip")
	return cmd
}

// historyTarget names the configuration of an entry. Deleted configurations
// are named from the entry itself.
func (rt *runtime) historyTarget(cmd *cobra.Command, id int64, e audit.Entry) string {
	c, err := rt.app.Configs.GetConfig(cmd.Context(), id)
	if err == nil {
		return c.ConfigNo
	}
	if errors.Is(err, configuration.ErrConfigNotFound) {
		if no, ok := e.Details["config_no"].(string); ok {
			return no
		}
	}
	return e.EntityID
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
