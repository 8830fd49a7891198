package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command group.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the index as a database image or JSON document",
	}

	cmd.AddCommand(newExportDBCommand(opts))
	cmd.AddCommand(newExportJSONCommand(opts))

	return cmd
}

func newExportDBCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "db <file>",
		Short: "Write a SQLite image of the whole index (- for stdout)",
		Long: `Write a SQLite image of the whole index.

The image can be restored with "jdex import". Numbering history travels
with it, so numbers freed by deletes stay retired after a restore.`,
		Args: cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			data, err := s.engine.ExportSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(s, cmd, args[0], data)
		}),
	}
}

func newExportJSONCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "json <file>",
		Short: "Write every entity as an indented JSON document (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			doc, err := s.engine.ExportDocument(cmd.Context())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := doc.Encode(&buf); err != nil {
				return fmt.Errorf("encode export document: %w", err)
			}
			return writeOutput(s, cmd, args[0], buf.Bytes())
		}),
	}
}

// writeOutput writes data to path atomically, or to stdout for "-".
// Stdout exports print nothing else so the stream stays clean.
func writeOutput(s *session, cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return WrapExitError(ExitCommandError, "failed to write "+path, err)
	}
	s.log.Info().Str("path", path).Int("bytes", len(data)).Msg("export written")
	return s.out.Success(notice{Message: fmt.Sprintf("Exported %d bytes to %s", len(data), path)})
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole index with a database image (- for stdin)",
		Long: `Replace the whole index with a SQLite image written by "jdex export db".

Nothing is merged: the current contents, activity log included, are gone
once the import succeeds. A file that is not a SQLite database is refused
and the index is left as it was.`,
		Args: cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read "+args[0], err)
			}
			if err := s.engine.ImportSnapshot(cmd.Context(), data); err != nil {
				return err
			}
			return s.out.Success(notice{Message: fmt.Sprintf("Imported %d bytes from %s", len(data), args[0])})
		}),
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Delete everything and restore the seed areas, categories and locations",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			if !yes {
				return NewExitError(ExitCommandError,
					"reset deletes every folder, item and activity entry; pass --yes to confirm")
			}
			if err := s.engine.Reset(cmd.Context()); err != nil {
				return err
			}
			return s.out.Success(notice{Message: "Index reset to seed data."})
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return cmd
}
