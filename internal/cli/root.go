package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsview/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	JournalPath string // overrides journal.path from the config

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config returns the loaded configuration, or the defaults when the root
// command has not run (subcommands built directly in tests).
func (o *RootOptions) Config() *config.Config {
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	return o.cfg
}

// journalPath resolves the journal location; "" means no journal.
func (o *RootOptions) journalPath() string {
	if o.JournalPath != "" {
		return o.JournalPath
	}
	return o.Config().Journal.Path
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// NewRootCommand creates the root command for the fitsview CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fitsview",
		Short: "fitsview - inspect and render FITS images",
		Long: `Inspect the primary header of FITS files and render their 2D image
data as log-scaled greyscale pictures.

Selections, reads and renders are recorded in an optional SQLite journal
that the history command can print.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.cfg = cfg
			installLogger(cmd, opts)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.cue, .yaml or .yml)")
	cmd.PersistentFlags().StringVar(&opts.JournalPath, "journal", "", "session journal database (overrides config)")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// installLogger routes slog to stderr at the configured level. Verbose
// always means debug.
func installLogger(cmd *cobra.Command, opts *RootOptions) {
	level := opts.Config().SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
