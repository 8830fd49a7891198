package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/engine"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>...",
		Short: "Search folders and items",
		Long: `Search folders and items by substring.

Matches numbers, names, descriptions, keywords, notes and locations, plus the
names of the owning category and area. Matching is case-insensitive for ASCII.
% and _ act as LIKE wildcards.

Example:
  jdex search tax
  jdex search 13.01`,
		Args: cobra.MinimumNArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			res, err := s.engine.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return s.out.Success(searchView(res))
		}),
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts per level and sensitivity tier",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			st, err := s.engine.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return s.out.Success(statsView(st))
		}),
	}
}

// NewActivityCommand creates the activity command.
func NewActivityCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			entries, err := s.engine.RecentActivity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return s.out.Success(activityList(entries))
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", engine.DefaultActivityLimit, "number of entries to show")

	return cmd
}
