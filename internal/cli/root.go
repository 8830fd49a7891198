package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmeg8r/jdex/internal/config"
	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/seed"
	"github.com/jmeg8r/jdex/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Env overrides the process environment for config lookup (for testing).
	Env map[string]string

	// started is set once a command's RunE begins; errors before that
	// point are usage errors.
	started bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jdex CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jdex",
		Short: "jdex - Johnny Decimal index",
		Long: `A personal index organised with the Johnny Decimal system.

Areas own ranges of two-digit categories; categories hold numbered folders
(CC.SS) and folders hold numbered items (CC.SS.SS). jdex assigns the next
free number, refuses deletes that would orphan children, and keeps an
activity log of every change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default .jdex.json in the working directory)")

	cmd.AddCommand(NewAreaCommand(opts))
	cmd.AddCommand(NewCategoryCommand(opts))
	cmd.AddCommand(NewFolderCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewLocationCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on out or errOut in the selected format.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !opts.started && !errors.As(err, &exitErr) {
		err = WrapExitError(ExitCommandError, "invalid usage", err)
	}
	if !slices.Contains(ValidFormats, opts.Format) {
		opts.Format = "text"
	}
	return opts.formatter(cmd).Report(err)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) environ() map[string]string {
	if o.Env != nil {
		return o.Env
	}
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// session is everything a command needs once the database is open.
type session struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
}

// withSession loads config, opens the store, seeds it on first use and
// runs fn. The store is closed when fn returns.
func (o *RootOptions) withSession(cmd *cobra.Command, fn func(*session) error) error {
	cfg, err := config.Load(config.LoadInput{
		ConfigPath:       o.ConfigPath,
		DatabaseOverride: o.Database,
		Env:              o.environ(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	level := cfg.Level()
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	var ds *seed.Dataset
	if cfg.SeedFile != "" {
		if ds, err = seed.Load(cfg.SeedFile); err != nil {
			return WrapExitError(ExitCommandError, "failed to load seed file", err)
		}
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create data directory", err)
		}
	}
	log.Debug().Str("path", cfg.Database).Str("global", cfg.Sources.Global).
		Str("project", cfg.Sources.Project).Msg("opening database")
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing database")
		}
	}()

	opts := []engine.Option{engine.WithLogger(log)}
	if ds != nil {
		opts = append(opts, engine.WithSeed(ds))
	}
	eng := engine.New(st, opts...)
	if _, err := eng.EnsureSeeded(cmd.Context()); err != nil {
		return err
	}

	return fn(&session{
		cfg:    cfg,
		log:    log,
		store:  st,
		engine: eng,
		out:    o.formatter(cmd),
	})
}

// run adapts a session function to cobra's RunE.
func (o *RootOptions) run(fn func(*session, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		o.started = true
		return o.withSession(cmd, func(s *session) error {
			return fn(s, cmd, args)
		})
	}
}

// flagChanged reports whether a flag was given on the command line.
func flagChanged(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
