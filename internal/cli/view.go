package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/uistate"
)

// boardEntry is a configuration as drawn on the board.
type boardEntry struct {
	configDetail
	Position *uistate.Position `json:"position,omitempty"`
}

func (rt *runtime) boardCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show every configuration with its members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := rt.board(cmd.Context(), all)
			if err != nil {
				return err
			}
			return rt.out.Output(entries, func(w io.Writer) error {
				for i, e := range entries {
					if i > 0 {
						fmt.Fprintln(w)
					}
					suffix := ""
					if e.Position != nil && e.Position.Hidden {
						suffix = "  " + rt.app.Labels.T("board.hidden")
					}
					if err := rt.writeConfigDetail(w, e.configDetail, suffix); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden configurations")
	return cmd
}

func (rt *runtime) board(ctx context.Context, all bool) ([]boardEntry, error) {
	positions, err := rt.app.View.LoadPositions(ctx)
	if err != nil {
		return nil, err
	}
	configs, err := rt.app.Configs.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]boardEntry, 0, len(configs))
	for _, c := range configs {
		var pos *uistate.Position
		if p, ok := positions[c.ID]; ok {
			pos = &p
		}
		if pos != nil && pos.Hidden && !all {
			continue
		}
		detail, err := rt.configDetail(ctx, c)
		if err != nil {
			return nil, err
		}
		entries = append(entries, boardEntry{configDetail: detail, Position: pos})
	}
	return entries, nil
}

// viewState is the JSON result of view show.
type viewState struct {
	Canvas    uistate.CanvasState `json:"canvas"`
	Saved     bool                `json:"saved"`
	Positions []viewPosition      `json:"positions"`
}

type viewPosition struct {
	ConfigNo string `json:"config_no"`
	uistate.Position
}

func (rt *runtime) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage board layout and visibility",
	}

	setHidden := func(hidden bool, key string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rt.config(ctx, args[0])
			if err != nil {
				return err
			}
			if err := rt.app.View.SetHidden(ctx, c.ID, hidden); err != nil {
				return err
			}
			return rt.out.Message(map[string]any{"config_no": c.ConfigNo, "hidden": hidden},
				rt.app.Labels.T(key, "config_no", c.ConfigNo))
		}
	}

	hide := &cobra.Command{
		Use:   "hide <config>",
		Short: "Hide a configuration on the board",
		Args:  cobra.ExactArgs(1),
		RunE:  setHidden(true, "msg.hidden"),
	}
	unhide := &cobra.Command{
		Use:   "unhide <config>",
		Short: "Show a hidden configuration again",
		Args:  cobra.ExactArgs(1),
		RunE:  setHidden(false, "msg.unhidden"),
	}

	place := &cobra.Command{
		Use:   "place <config> <x> <y>",
		Short: "Set where a configuration is drawn",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rt.config(ctx, args[0])
			if err != nil {
				return err
			}
			xy, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			if err := rt.app.View.SavePosition(ctx, c.ID, xy[0], xy[1]); err != nil {
				return err
			}
			return rt.out.Message(map[string]any{"config_no": c.ConfigNo, "x": xy[0], "y": xy[1]},
				rt.app.Labels.T("msg.placed", "config_no", c.ConfigNo, "x", xy[0], "y", xy[1]))
		},
	}

	canvas := &cobra.Command{
		Use:   "canvas <scale> <center-x> <center-y>",
		Short: "Save the board zoom and centre",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			st := uistate.CanvasState{Scale: v[0], CenterX: v[1], CenterY: v[2]}
			if err := rt.app.View.SaveCanvasState(cmd.Context(), st); err != nil {
				return err
			}
			return rt.out.Message(st,
				rt.app.Labels.T("msg.canvas_saved", "scale", st.Scale, "x", st.CenterX, "y", st.CenterY))
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show saved layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, saved, err := rt.app.View.LoadCanvasState(ctx)
			if err != nil {
				return err
			}
			positions, err := rt.app.View.LoadPositions(ctx)
			if err != nil {
				return err
			}
			configs, err := rt.app.Configs.ListConfigs(ctx)
			if err != nil {
				return err
			}

			res := viewState{Canvas: st, Saved: saved, Positions: []viewPosition{}}
			for _, c := range configs {
				if p, ok := positions[c.ID]; ok {
					res.Positions = append(res.Positions, viewPosition{ConfigNo: c.ConfigNo, Position: p})
				}
			}

			return rt.out.Output(res, func(w io.Writer) error {
				l := rt.app.Labels
				if saved {
					fmt.Fprintln(w, l.T("msg.canvas", "scale", st.Scale, "x", st.CenterX, "y", st.CenterY))
				} else {
					fmt.Fprintln(w, l.T("msg.canvas_unset"))
				}
				rows := make([][]string, 0, len(res.Positions))
				for _, p := range res.Positions {
					hidden := ""
					if p.Hidden {
						hidden = l.T("board.hidden")
					}
					rows = append(rows, []string{p.ConfigNo, formatFloat(p.X), formatFloat(p.Y), hidden})
				}
				return rt.out.Table([]string{l.T("col.config_no"), "X", "Y", l.T("col.visibility")}, rows)
			})
		},
	}

	// Coordinates may be negative, so nothing after the first argument is
	// read as a flag.
	place.Flags().SetInterspersed(false)
	canvas.Flags().SetInterspersed(false)

	cmd.AddCommand(hide, unhide, place, canvas, show)
	return cmd
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
