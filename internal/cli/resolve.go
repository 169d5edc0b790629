package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/recovery"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Keep    bool
	Discard bool
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Primary  string `json:"primary"`
	Shadow   string `json:"shadow"`
	Status   string `json:"status"`
	Decision string `json:"decision,omitempty"`
	Records  int    `json:"records"`
}

func (r ResolveResult) String() string {
	switch r.Decision {
	case "keep":
		return fmt.Sprintf("Autosaved changes kept. %s now holds %d record(s).\n", r.Primary, r.Records)
	case "discard":
		return fmt.Sprintf("Autosaved changes discarded. %s restored from %s.\n", r.Shadow, r.Primary)
	}
	if r.Status == recovery.StatusNoShadow.String() {
		return fmt.Sprintf("%s does not exist. Nothing to resolve.\n", r.Shadow)
	}
	return fmt.Sprintf("%s and %s are identical.\n", r.Primary, r.Shadow)
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <primary> <autosave> (--keep | --discard)",
		Short: "Settle a diverged database and autosave pair without the shell",
		Long: `Apply the shell's startup recovery decision non-interactively.

--keep copies the autosave file over the database, --discard copies the
database over the autosave file. The copy is byte for byte, so the pair is
identical afterwards. Files that already match are left alone.

Examples:
  cms resolve P3_1-CMS.txt autosave.txt --discard
  cms resolve P3_1-CMS.txt autosave.txt --keep --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "keep the autosaved changes")
	cmd.Flags().BoolVar(&opts.Discard, "discard", false, "discard the autosaved changes")
	cmd.MarkFlagsMutuallyExclusive("keep", "discard")
	cmd.MarkFlagsOneRequired("keep", "discard")

	return cmd
}

func runResolve(opts *ResolveOptions, primary, shadow string, cmd *cobra.Command) error {
	cfg := opts.config()
	c := &recovery.Coordinator{
		Primary: primary,
		Shadow:  shadow,
		Options: codec.Options{Atomic: cfg.Database.Atomic()},
	}

	status, err := c.Check()
	if err != nil {
		return opts.fail(cmd, ExitCommandError, fileErrorCode(err), "failed to compare files", err)
	}
	f := opts.formatter(cmd)
	f.VerboseLog("Compared %s with %s: %s", primary, shadow, status)

	result := ResolveResult{Primary: primary, Shadow: shadow, Status: status.String()}
	switch status {
	case recovery.StatusDiverged:
	case recovery.StatusNoPrimary:
		return opts.fail(cmd, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database %s not found", primary), nil)
	default:
		return f.Success(result)
	}

	decision := recovery.Discard
	if opts.Keep {
		decision = recovery.Keep
	}
	res, err := c.Resolve(decision)
	if err != nil {
		dest := shadow
		if decision == recovery.Keep {
			dest = primary
		}
		return opts.fail(cmd, ExitCommandError, resolveErrorCode(err, dest), fmt.Sprintf("failed to %s autosaved changes", decision), err)
	}
	opts.logger().Info("resolved", "primary", primary, "shadow", shadow, "decision", decision, "records", res.Loaded)

	result.Decision = decision.String()
	result.Records = res.Loaded
	return f.Success(result)
}

// resolveErrorCode maps a failure on the file being overwritten to
// ErrCodeWrite and anything else to the usual load codes.
func resolveErrorCode(err error, dest string) string {
	var ioErr *codec.IOError
	if errors.As(err, &ioErr) && ioErr.Path == dest {
		return ErrCodeWrite
	}
	return fileErrorCode(err)
}
