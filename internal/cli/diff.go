package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/recovery"
)

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	Primary  string `json:"primary"`
	Shadow   string `json:"shadow"`
	Diverged bool   `json:"diverged"`
	Diff     string `json:"diff,omitempty"`
}

func (r DiffResult) String() string {
	if !r.Diverged {
		return fmt.Sprintf("%s and %s are identical.\n", r.Primary, r.Shadow)
	}
	return r.Diff
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <primary> <autosave>",
		Short: "Compare a database file with its autosave file",
		Long: `Compare two database files byte for byte, the same way the shell does
at startup, and print a unified diff when they differ.

Exits with status 1 when the files differ.

Examples:
  cms diff P3_1-CMS.txt autosave.txt
  cms diff P3_1-CMS.txt autosave.txt --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDiff(opts *RootOptions, primary, shadow string, cmd *cobra.Command) error {
	diverged, err := recovery.Diverged(primary, shadow)
	if err != nil {
		return opts.fail(cmd, ExitCommandError, fileErrorCode(err), "failed to compare files", err)
	}

	result := DiffResult{Primary: primary, Shadow: shadow, Diverged: diverged}
	if diverged {
		c := &recovery.Coordinator{Primary: primary, Shadow: shadow}
		diff, err := c.Diff()
		if err != nil {
			return opts.fail(cmd, ExitCommandError, ErrCodeRead, "failed to diff files", err)
		}
		result.Diff = diff
	}
	f := opts.formatter(cmd)
	f.VerboseLog("Compared %s with %s: diverged=%t", primary, shadow, diverged)
	if err := f.Success(result); err != nil {
		return err
	}

	if diverged {
		return NewExitError(ExitFailure, fmt.Sprintf("[%s] %s and %s differ", ErrCodeDiverged, primary, shadow))
	}
	return nil
}
