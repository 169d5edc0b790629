package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/codec"
)

// SkippedRow is one row the loader rejected.
type SkippedRow struct {
	Line    int    `json:"line"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Path     string       `json:"path"`
	Loaded   int          `json:"loaded"`
	Skipped  []SkippedRow `json:"skipped"`
	NoHeader bool         `json:"no_header,omitempty"`
}

func (r CheckResult) String() string {
	var b strings.Builder
	for _, row := range r.Skipped {
		fmt.Fprintf(&b, "Line %d: %s. Skipping.\n", row.Line, row.Message)
	}
	fmt.Fprintf(&b, "%s: %d record(s) loaded, %d row(s) skipped.\n", r.Path, r.Loaded, len(r.Skipped))
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report rows a database file would lose on load",
		Long: `Load a database file and list every row that would be skipped.

Exits with status 1 when at least one row is skipped, so the command can
guard a file before it is opened in the shell.

Examples:
  cms check P3_1-CMS.txt
  cms check P3_1-CMS.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	res, err := codec.Load(path)
	if err != nil {
		return opts.fail(cmd, ExitCommandError, fileErrorCode(err), fmt.Sprintf("failed to load %s", path), err)
	}

	result := CheckResult{
		Path:     path,
		Loaded:   res.Loaded,
		Skipped:  make([]SkippedRow, 0, len(res.Skipped)),
		NoHeader: res.NoHeader,
	}
	for _, perr := range res.Skipped {
		result.Skipped = append(result.Skipped, SkippedRow{
			Line:    perr.Line,
			Reason:  string(perr.Reason),
			Message: perr.Message,
		})
	}

	if err := opts.formatter(cmd).Success(result); err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("[%s] %d row(s) skipped in %s", ErrCodeSkippedRows, len(result.Skipped), path))
	}
	return nil
}
