package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// NewItemCommand creates the item command group.
func NewItemCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage items (CC.SS.SS)",
	}

	ec := entityCommands{
		entity: jd.EntityItem,
		fields: jd.ItemFields,
		update: (*engine.Engine).UpdateItem,
		delete: (*engine.Engine).DeleteItem,
		number: func(e *engine.Engine, ctx context.Context, id int64) (string, error) {
			it, err := e.GetItem(ctx, id)
			return it.ItemNumber, err
		},
	}

	cmd.AddCommand(newItemListCommand(opts))
	cmd.AddCommand(newItemShowCommand(opts))
	cmd.AddCommand(newItemCreateCommand(opts))
	cmd.AddCommand(ec.updateCommand(opts))
	cmd.AddCommand(ec.deleteCommand(opts))
	cmd.AddCommand(newItemNextCommand(opts))

	return cmd
}

func newItemListCommand(opts *RootOptions) *cobra.Command {
	var folderID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items by number",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			items, err := s.engine.ListItems(cmd.Context(), folderID)
			if err != nil {
				return err
			}
			return s.out.Success(itemList(items))
		}),
	}

	cmd.Flags().Int64Var(&folderID, "folder", 0, "only items of this folder id")

	return cmd
}

func newItemShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its effective sensitivity",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			it, err := s.engine.GetItem(cmd.Context(), id)
			if err != nil {
				return err
			}
			return s.out.Success(itemDetail(it))
		}),
	}
}

func newItemCreateCommand(opts *RootOptions) *cobra.Command {
	in := jd.Item{Sensitivity: jd.SensitivityInherit}
	var size int64

	cmd := &cobra.Command{
		Use:   "create --folder ID --name NAME",
		Short: "Create an item",
		Long: `Create an item. Without --number or --sequence the next free
number in the folder is assigned. Items inherit the folder's sensitivity
unless --sensitivity is given.

Example:
  jdex item create --folder 7 --name "W-2 2023" --file-type pdf --size 48213`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			if flagChanged(cmd.Flags(), "size") {
				in.FileSize = &size
			}
			ctx := cmd.Context()
			id, err := s.engine.CreateItem(ctx, in)
			if err != nil {
				return err
			}
			it, err := s.engine.GetItem(ctx, id)
			if err != nil {
				return err
			}
			return s.out.Success(mutation{
				Action: jd.ActionCreate,
				Entity: jd.EntityItem,
				ID:     id,
				Number: it.ItemNumber,
			})
		}),
	}

	cmd.Flags().Int64Var(&in.FolderID, "folder", 0, "parent folder id")
	cmd.Flags().StringVar(&in.ItemNumber, "number", "", "explicit item number CC.SS.SS")
	cmd.Flags().IntVar(&in.Sequence, "sequence", 0, "explicit sequence 1-99")
	cmd.Flags().StringVar(&in.Name, "name", "", "item name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.FileType, "file-type", "", "file type, e.g. pdf")
	cmd.Flags().Var(newSensitivityValue(&in.Sensitivity, true), "sensitivity", "inherit|standard|sensitive|work")
	cmd.Flags().StringVar(&in.Location, "location", "", "storage location name")
	cmd.Flags().StringVar(&in.StoragePath, "storage-path", "", "path inside the location")
	cmd.Flags().Int64Var(&size, "size", 0, "file size in bytes")
	cmd.Flags().StringVar(&in.Keywords, "keywords", "", "search keywords")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("folder")

	return cmd
}

func newItemNextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next <folder-id>",
		Short: "Show the next free item number in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			id, err := parseID("folder", args[0])
			if err != nil {
				return err
			}
			alloc, ok, err := s.engine.NextItemNumber(cmd.Context(), id)
			if err != nil {
				return err
			}
			return s.out.Success(allocationView{Allocation: alloc, Ready: ok})
		}),
	}
}
