package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jmeg8r/jdex/internal/console"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Exec      string
	Tables    bool
	TableName string
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Run raw SQL against the index",
		Long: `Run raw SQL against the index.

Statements bypass numbering, containment checks and the activity log. Each
statement commits on its own. With no flags an interactive console starts;
end a statement with ";" to run it.

Console commands:
  .tables         list tables
  .table NAME     show every row of a table
  .quit           leave the console

Example:
  jdex sql -e "SELECT folder_number, name FROM folders"
  jdex sql --table areas`,
		Args: cobra.NoArgs,
		RunE: rootOpts.run(func(s *session, cmd *cobra.Command, _ []string) error {
			c := console.New(s.store, s.log)
			ctx := cmd.Context()
			switch {
			case opts.Tables:
				return showTables(ctx, s, c)
			case opts.TableName != "":
				return showTable(ctx, s, c, opts.TableName)
			case opts.Exec != "":
				res := c.Exec(ctx, opts.Exec)
				if !res.Success {
					return NewExitError(ExitFailure, res.Error)
				}
				return s.out.Success(consoleResult(res))
			default:
				return (&repl{session: s, console: c}).run(ctx)
			}
		}),
	}

	cmd.Flags().StringVarP(&opts.Exec, "exec", "e", "", "execute one statement and exit")
	cmd.Flags().BoolVar(&opts.Tables, "tables", false, "list tables and exit")
	cmd.Flags().StringVar(&opts.TableName, "table", "", "show every row of a table and exit")
	cmd.MarkFlagsMutuallyExclusive("exec", "tables", "table")

	return cmd
}

func showTables(ctx context.Context, s *session, c *console.Console) error {
	names, err := c.Tables(ctx)
	if err != nil {
		return err
	}
	return s.out.Success(tableNames(names))
}

func showTable(ctx context.Context, s *session, c *console.Console, name string) error {
	res, err := c.TableData(ctx, name)
	if err != nil {
		return err
	}
	return s.out.Success(consoleResult(res))
}

// repl is the interactive console loop.
type repl struct {
	session *session
	console *console.Console
	line    *liner.State
}

func (r *repl) run(ctx context.Context) error {
	r.line = liner.NewLiner()
	defer r.line.Close()
	r.line.SetCtrlCAborts(true)
	r.line.SetCompleter(r.complete)

	history := r.session.cfg.HistoryFile
	if f, err := os.Open(history); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	defer r.saveHistory(history)

	w := r.session.out.Writer
	fmt.Fprintf(w, "jdex SQL console on %s\n", r.session.store.Path())
	fmt.Fprintln(w, `Statements end with ";". Type .help for commands.`)

	var pending strings.Builder
	for {
		prompt := "jdex> "
		if pending.Len() > 0 {
			prompt = "  ...> "
		}
		input, err := r.line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if pending.Len() == 0 && strings.HasPrefix(input, ".") {
			r.line.AppendHistory(input)
			if quit := r.meta(ctx, input); quit {
				return nil
			}
			continue
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(input)
		if !strings.HasSuffix(input, ";") {
			continue
		}

		stmt := pending.String()
		pending.Reset()
		r.line.AppendHistory(strings.ReplaceAll(stmt, "\n", " "))
		r.exec(ctx, stmt)
	}
}

// meta runs a dot command and reports whether the console should exit.
func (r *repl) meta(ctx context.Context, input string) bool {
	out := r.session.out
	fields := strings.Fields(input)
	switch fields[0] {
	case ".quit", ".exit", ".q":
		return true
	case ".help":
		fmt.Fprintln(out.Writer, ".tables | .table NAME | .quit")
	case ".tables":
		if err := showTables(ctx, r.session, r.console); err != nil {
			_ = out.Error("SQL_ERROR", err.Error(), nil)
		}
	case ".table":
		if len(fields) != 2 {
			_ = out.Error("USAGE", ".table takes one table name", nil)
			break
		}
		if err := showTable(ctx, r.session, r.console, fields[1]); err != nil {
			_ = out.Error("SQL_ERROR", err.Error(), nil)
		}
	default:
		_ = out.Error("USAGE", fmt.Sprintf("unknown command %s (try .help)", fields[0]), nil)
	}
	return false
}

func (r *repl) exec(ctx context.Context, stmt string) {
	res := r.console.Exec(ctx, stmt)
	if !res.Success {
		_ = r.session.out.Error("SQL_ERROR", res.Error, nil)
		return
	}
	_ = r.session.out.Success(consoleResult(res))
}

var completions = []string{
	".tables", ".table ", ".quit", ".help",
	"SELECT ", "FROM ", "WHERE ", "ORDER BY ", "UPDATE ", "DELETE FROM ", "INSERT INTO ",
	"areas", "categories", "folders", "items", "storage_locations", "activity_log",
}

func (r *repl) complete(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasSuffix(line, " ") {
		return nil
	}
	last := fields[len(fields)-1]
	head := line[:len(line)-len(last)]
	var out []string
	for _, c := range completions {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(last)) {
			out = append(out, head+c)
		}
	}
	return out
}

// saveHistory writes the console history atomically. Failures are logged
// and otherwise ignored.
func (r *repl) saveHistory(path string) {
	if path == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := r.line.WriteHistory(&buf); err != nil {
		r.session.log.Warn().Err(err).Msg("cannot serialize history")
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.session.log.Warn().Err(err).Str("path", path).Msg("cannot create history directory")
		return
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		r.session.log.Warn().Err(err).Str("path", path).Msg("cannot save history")
	}
}
