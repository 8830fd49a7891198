package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// NewAreaCommand creates the area command group.
func NewAreaCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Manage areas (category ranges such as 10-19)",
	}

	ec := entityCommands{
		entity: jd.EntityArea,
		fields: jd.AreaFields,
		update: (*engine.Engine).UpdateArea,
		delete: (*engine.Engine).DeleteArea,
		number: func(e *engine.Engine, ctx context.Context, id int64) (string, error) {
			a, err := e.GetArea(ctx, id)
			return areaRange(a), err
		},
		after: warnOverlaps,
	}

	cmd.AddCommand(newAreaListCommand(opts))
	cmd.AddCommand(newAreaCreateCommand(opts))
	cmd.AddCommand(ec.updateCommand(opts))
	cmd.AddCommand(ec.deleteCommand(opts))
	cmd.AddCommand(newAreaOverlapsCommand(opts))

	return cmd
}

func newAreaListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List areas by range",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			areas, err := s.engine.ListAreas(cmd.Context())
			if err != nil {
				return err
			}
			return s.out.Success(areaList(areas))
		}),
	}
}

func newAreaCreateCommand(opts *RootOptions) *cobra.Command {
	var in jd.Area

	cmd := &cobra.Command{
		Use:   "create --start N --end N --name NAME",
		Short: "Create an area",
		Long: `Create an area owning categories start..end.

Example:
  jdex area create --start 10 --end 19 --name Personal --color '#0d9488'`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			id, err := s.engine.CreateArea(ctx, in)
			if err != nil {
				return err
			}
			warnOverlaps(s, ctx, id)
			return s.out.Success(mutation{
				Action: jd.ActionCreate,
				Entity: jd.EntityArea,
				ID:     id,
				Number: areaRange(in),
			})
		}),
	}

	cmd.Flags().IntVar(&in.RangeStart, "start", 0, "first category number")
	cmd.Flags().IntVar(&in.RangeEnd, "end", 0, "last category number")
	cmd.Flags().StringVar(&in.Name, "name", "", "area name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.Color, "color", "", "display color as #rrggbb (default "+jd.DefaultAreaColor+")")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newAreaOverlapsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overlaps",
		Short: "List pairs of areas whose ranges intersect",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			overlaps, err := s.engine.AreaOverlaps(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return s.out.Success(overlaps)
			}
			if len(overlaps) == 0 {
				return s.out.Success(notice{Message: "No overlapping areas."})
			}
			rows := make([][]string, 0, len(overlaps))
			for _, o := range overlaps {
				rows = append(rows, []string{
					areaRange(o.A), o.A.Name, areaRange(o.B), o.B.Name,
				})
			}
			return s.out.Success(notice{Message: renderTable([]string{"RANGE", "AREA", "RANGE", "AREA"}, rows)})
		}),
	}
}

// warnOverlaps prints a warning for each area overlapping area id.
// Overlap is allowed, so failures here never fail the command.
func warnOverlaps(s *session, ctx context.Context, id int64) {
	overlaps, err := s.engine.AreaOverlaps(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("overlap check failed")
		return
	}
	for _, o := range overlaps {
		var self, other jd.Area
		switch id {
		case o.A.ID:
			self, other = o.A, o.B
		case o.B.ID:
			self, other = o.B, o.A
		default:
			continue
		}
		s.out.Warn("%s", fmt.Sprintf("area %s %s overlaps area %s %s",
			areaRange(self), self.Name, areaRange(other), other.Name))
	}
}
