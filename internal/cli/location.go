package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// NewLocationCommand creates the storage location command group.
func NewLocationCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "location",
		Aliases: []string{"loc"},
		Short:   "Manage the storage location catalog",
	}

	ec := entityCommands{
		entity: jd.EntityStorageLocation,
		fields: jd.LocationFields,
		update: (*engine.Engine).UpdateLocation,
		delete: (*engine.Engine).DeleteLocation,
	}

	cmd.AddCommand(newLocationListCommand(opts))
	cmd.AddCommand(newLocationCreateCommand(opts))
	cmd.AddCommand(ec.updateCommand(opts))
	cmd.AddCommand(ec.deleteCommand(opts))

	return cmd
}

func newLocationListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List storage locations by name",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			locs, err := s.engine.ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			return s.out.Success(locationList(locs))
		}),
	}
}

func newLocationCreateCommand(opts *RootOptions) *cobra.Command {
	var in jd.StorageLocation

	cmd := &cobra.Command{
		Use:   "create --name NAME --type TYPE",
		Short: "Add a storage location",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			id, err := s.engine.CreateLocation(cmd.Context(), in)
			if err != nil {
				return err
			}
			return s.out.Success(mutation{
				Action: jd.ActionCreate,
				Entity: jd.EntityStorageLocation,
				ID:     id,
				Number: in.Name,
			})
		}),
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "location name")
	cmd.Flags().StringVar(&in.Type, "type", "", "kind of storage, e.g. cloud, nas, drive")
	cmd.Flags().StringVar(&in.Path, "path", "", "root path or URL")
	cmd.Flags().BoolVar(&in.IsEncrypted, "encrypted", false, "the location is encrypted at rest")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")

	return cmd
}
