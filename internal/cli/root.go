package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string
	LogLevel string

	// Logger is built in PersistentPreRunE. Tests may preset it.
	Logger *slog.Logger

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cms CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	shellOpts := &ShellOptions{RootOptions: opts}

	cmd := &cobra.Command{
		Use:   "cms",
		Short: "CMS - class management system",
		Long: `A record manager for student marks kept in a tab-separated file.

Without a subcommand cms starts the interactive shell. Every change made in
the shell is autosaved to a shadow file; if the shadow and the database
differ at startup, cms shows both and asks which to keep.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(shellOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a YAML or TOML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	shellOpts.addFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// setup loads the config file and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("[%s] failed to load config", ErrCodeConfig), err)
		}
		cfg = loaded
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("[%s] invalid config", ErrCodeConfig), err)
	}
	o.cfg = cfg

	if o.Logger == nil {
		level, err := parseLevel(cfg.Logging.Level)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("[%s] invalid log level", ErrCodeConfig), err)
		}
		if o.Verbose {
			level = slog.LevelDebug
		}
		o.Logger = NewLogger(cmd.ErrOrStderr(), level)
	}
	slog.SetDefault(o.Logger)
	return nil
}

// config returns the loaded configuration, or Default if setup never ran.
func (o *RootOptions) config() *config.Config {
	if o.cfg == nil {
		return config.Default()
	}
	return o.cfg
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

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// logger returns the configured logger, or slog.Default if setup never ran.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
