package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// NewCategoryCommand creates the category command group.
func NewCategoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories (two-digit numbers inside an area)",
	}

	ec := entityCommands{
		entity: jd.EntityCategory,
		fields: jd.CategoryFields,
		update: (*engine.Engine).UpdateCategory,
		delete: (*engine.Engine).DeleteCategory,
		number: func(e *engine.Engine, ctx context.Context, id int64) (string, error) {
			c, err := e.GetCategory(ctx, id)
			return jd.FormatCategoryNumber(c.Number), err
		},
	}

	cmd.AddCommand(newCategoryListCommand(opts))
	cmd.AddCommand(newCategoryCreateCommand(opts))
	cmd.AddCommand(ec.updateCommand(opts))
	cmd.AddCommand(ec.deleteCommand(opts))

	return cmd
}

func newCategoryListCommand(opts *RootOptions) *cobra.Command {
	var areaID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories by number",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			cats, err := s.engine.ListCategories(cmd.Context(), areaID)
			if err != nil {
				return err
			}
			return s.out.Success(categoryList(cats))
		}),
	}

	cmd.Flags().Int64Var(&areaID, "area", 0, "only categories of this area id")

	return cmd
}

func newCategoryCreateCommand(opts *RootOptions) *cobra.Command {
	var in jd.Category

	cmd := &cobra.Command{
		Use:   "create --number NN --area ID --name NAME",
		Short: "Create a category",
		Long: `Create a category. Numbers are unique across all areas.

Example:
  jdex category create --number 13 --area 2 --name Finance`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			id, err := s.engine.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}
			return s.out.Success(mutation{
				Action: jd.ActionCreate,
				Entity: jd.EntityCategory,
				ID:     id,
				Number: jd.FormatCategoryNumber(in.Number),
			})
		}),
	}

	cmd.Flags().IntVar(&in.Number, "number", 0, "category number (00-99)")
	cmd.Flags().Int64Var(&in.AreaID, "area", 0, "owning area id")
	cmd.Flags().StringVar(&in.Name, "name", "", "category name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("area")

	return cmd
}
