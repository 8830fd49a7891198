package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// NewFolderCommand creates the folder command group.
func NewFolderCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders (CC.SS)",
	}

	ec := entityCommands{
		entity: jd.EntityFolder,
		fields: jd.FolderFields,
		update: (*engine.Engine).UpdateFolder,
		delete: (*engine.Engine).DeleteFolder,
		number: func(e *engine.Engine, ctx context.Context, id int64) (string, error) {
			f, err := e.GetFolder(ctx, id)
			return f.FolderNumber, err
		},
	}

	cmd.AddCommand(newFolderListCommand(opts))
	cmd.AddCommand(newFolderShowCommand(opts))
	cmd.AddCommand(newFolderCreateCommand(opts))
	cmd.AddCommand(ec.updateCommand(opts))
	cmd.AddCommand(ec.deleteCommand(opts))
	cmd.AddCommand(newFolderNextCommand(opts))

	return cmd
}

func newFolderListCommand(opts *RootOptions) *cobra.Command {
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders by number",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			folders, err := s.engine.ListFolders(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			return s.out.Success(folderList(folders))
		}),
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "only folders of this category id")

	return cmd
}

func newFolderShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one folder",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID("folder", args[0])
			if err != nil {
				return err
			}
			f, err := s.engine.GetFolder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return s.out.Success(folderDetail(f))
		}),
	}
}

func newFolderCreateCommand(opts *RootOptions) *cobra.Command {
	in := jd.Folder{Sensitivity: jd.SensitivityStandard}

	cmd := &cobra.Command{
		Use:   "create --category ID --name NAME",
		Short: "Create a folder",
		Long: `Create a folder. Without --number or --sequence the next free
number in the category is assigned.

Example:
  jdex folder create --category 2 --name "Tax Documents" --sensitivity sensitive`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			id, err := s.engine.CreateFolder(ctx, in)
			if err != nil {
				return err
			}
			f, err := s.engine.GetFolder(ctx, id)
			if err != nil {
				return err
			}
			return s.out.Success(mutation{
				Action: jd.ActionCreate,
				Entity: jd.EntityFolder,
				ID:     id,
				Number: f.FolderNumber,
			})
		}),
	}

	cmd.Flags().Int64Var(&in.CategoryID, "category", 0, "parent category id")
	cmd.Flags().StringVar(&in.FolderNumber, "number", "", "explicit folder number CC.SS")
	cmd.Flags().IntVar(&in.Sequence, "sequence", 0, "explicit sequence 1-99")
	cmd.Flags().StringVar(&in.Name, "name", "", "folder name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Var(newSensitivityValue(&in.Sensitivity, false), "sensitivity", "standard|sensitive|work")
	cmd.Flags().StringVar(&in.Location, "location", "", "storage location name")
	cmd.Flags().StringVar(&in.StoragePath, "storage-path", "", "path inside the location")
	cmd.Flags().StringVar(&in.Keywords, "keywords", "", "search keywords")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newFolderNextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next <category-id>",
		Short: "Show the next free folder number in a category",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID("category", args[0])
			if err != nil {
				return err
			}
			alloc, ok, err := s.engine.NextFolderNumber(cmd.Context(), id)
			if err != nil {
				return err
			}
			return s.out.Success(allocationView{Allocation: alloc, Ready: ok})
		}),
	}
}
