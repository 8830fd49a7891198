package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// entityCommands builds the update and delete subcommands, which have the
// same shape for every entity kind.
type entityCommands struct {
	entity jd.EntityType
	fields []string
	update func(*engine.Engine, context.Context, int64, jd.Patch) error
	delete func(*engine.Engine, context.Context, int64) error
	// number renders the entity's display number; nil when it has none.
	number func(*engine.Engine, context.Context, int64) (string, error)
	// after runs once a mutation has committed.
	after func(*session, context.Context, int64)
}

func (ec entityCommands) noun() string {
	return strings.ReplaceAll(string(ec.entity), "_", " ")
}

func (ec entityCommands) updateCommand(opts *RootOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <id> --set field=value...",
		Short: fmt.Sprintf("Update fields of a %s", ec.noun()),
		Long: fmt.Sprintf(`Update fields of a %s.

Settable fields: %s.
Other fields are ignored. An empty value clears an optional field.`, ec.noun(), strings.Join(ec.fields, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID(ec.noun(), args[0])
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return NewExitError(ExitCommandError, "nothing to update: pass at least one --set field=value")
			}
			patch, err := parseSets(sets)
			if err != nil {
				return err
			}
			if dropped := patch.Dropped(ec.fields); len(dropped) > 0 {
				s.out.Warn("ignoring unknown field(s): %s", strings.Join(dropped, ", "))
			}

			ctx := cmd.Context()
			if err := ec.update(s.engine, ctx, id, patch); err != nil {
				return err
			}
			m := mutation{Action: jd.ActionUpdate, Entity: ec.entity, ID: id}
			if ec.number != nil {
				if m.Number, err = ec.number(s.engine, ctx, id); err != nil {
					return err
				}
			}
			if ec.after != nil {
				ec.after(s, ctx, id)
			}
			return s.out.Success(m)
		}),
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value assignment (repeatable)")

	return cmd
}

func (ec entityCommands) deleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", ec.noun()),
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID(ec.noun(), args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			m := mutation{Action: jd.ActionDelete, Entity: ec.entity, ID: id}
			if ec.number != nil {
				if m.Number, err = ec.number(s.engine, ctx, id); err != nil {
					return err
				}
			}
			if err := ec.delete(s.engine, ctx, id); err != nil {
				return err
			}
			return s.out.Success(m)
		}),
	}
}
