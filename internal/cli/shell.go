package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/journal"
	"github.com/roach88/cms/internal/shell"
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	Database string
	Autosave string
	Journal  string

	// Sessions allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Sessions journal.SessionGenerator
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Long: `Start the interactive cms shell on stdin and stdout.

At startup the database file is compared byte for byte with the autosave
file. If they differ, both are shown with a diff and you choose whether to
keep the autosaved changes. Type HELP in the shell for the command list.

Examples:
  cms shell
  cms shell --db class.txt --autosave class.autosave
  cms shell --journal cms.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func (o *ShellOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "database file (overrides database.primary)")
	cmd.Flags().StringVar(&o.Autosave, "autosave", "", "autosave file (overrides database.autosave)")
	cmd.Flags().StringVar(&o.Journal, "journal", "", "SQLite audit journal (overrides journal.path)")
}

func runShell(opts *ShellOptions, cmd *cobra.Command) error {
	cfg := *opts.config()
	if opts.Database != "" {
		cfg.Database.Primary = opts.Database
	}
	if opts.Autosave != "" {
		cfg.Database.Autosave = opts.Autosave
	}
	if opts.Journal != "" {
		cfg.Journal.Path = opts.Journal
	}

	logger := opts.logger()

	// A journal that cannot be opened is logged and skipped.
	var j *journal.Journal
	if cfg.Journal.Path != "" {
		var err error
		j, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal disabled", "path", cfg.Journal.Path, "error", err)
		} else {
			defer func() {
				if closeErr := j.Close(); closeErr != nil {
					logger.Error("error closing journal", "error", closeErr)
				}
			}()
		}
	}

	out := cmd.OutOrStdout()
	sess, err := shell.New(shell.Options{
		Config:   &cfg,
		In:       cmd.InOrStdin(),
		Out:      out,
		Logger:   logger,
		Journal:  j,
		Sessions: opts.Sessions,
		Color:    useColor(cfg.Shell.Color, out),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("[%s] invalid shell settings", ErrCodeConfig), err)
	}
	logger.Debug("shell starting", "session", sess.ID(), "db", cfg.Database.Primary, "autosave", cfg.Database.Autosave)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sess.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("[%s] shell error", ErrCodeGeneric), err)
	}
	return nil
}
