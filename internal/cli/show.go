package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
	"github.com/roach88/cms/internal/table"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Sort string // "" | "id" | "mark"
	Desc bool
}

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	Path    string          `json:"path"`
	Records []record.Record `json:"records"`
	Skipped int             `json:"skipped"`
}

func (r ShowResult) String() string {
	return table.Records(r.Records) +
		fmt.Sprintf("There are in total of %d records discovered.\n", len(r.Records))
}

// SummaryResult is the JSON payload of the summary command. Summary is
// nil for an empty database.
type SummaryResult struct {
	Path    string         `json:"path"`
	Summary *store.Summary `json:"summary"`
}

func (r SummaryResult) String() string {
	if r.Summary == nil {
		return "There are no records to summarize.\n"
	}
	return table.Summary(*r.Summary)
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print every record in a database file",
		Long: `Load a database file and print its records as a table.

Rows that cannot be parsed are skipped and logged. Sorting happens in
memory only; the file is never modified.

Examples:
  cms show P3_1-CMS.txt
  cms show P3_1-CMS.txt --sort mark --desc
  cms show P3_1-CMS.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort by field (id|mark)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort in descending order")

	return cmd
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print count, average, highest and lowest mark",
		Long: `Load a database file and print aggregate statistics.

Ties for the highest or lowest mark go to the record that appears first
in the file.

Examples:
  cms summary P3_1-CMS.txt
  cms summary P3_1-CMS.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *ShowOptions, path string, cmd *cobra.Command) error {
	res, err := opts.load(cmd, path)
	if err != nil {
		return err
	}

	if opts.Sort != "" {
		field, err := record.ParseField(opts.Sort)
		if err != nil {
			return opts.fail(cmd, ExitCommandError, ErrCodeBadSortKey, "invalid --sort", err)
		}
		res.Store.SortBy(field, !opts.Desc)
	}

	return opts.formatter(cmd).Success(ShowResult{
		Path:    path,
		Records: res.Store.Records(),
		Skipped: len(res.Skipped),
	})
}

func runSummary(opts *RootOptions, path string, cmd *cobra.Command) error {
	res, err := opts.load(cmd, path)
	if err != nil {
		return err
	}
	result := SummaryResult{Path: path}
	if sum, ok := res.Store.Summarize(); ok {
		result.Summary = &sum
	}
	return opts.formatter(cmd).Success(result)
}

// load reads a database file for a read-only command and logs skipped rows.
func (o *RootOptions) load(cmd *cobra.Command, path string) (*codec.LoadResult, error) {
	res, err := codec.Load(path)
	if err != nil {
		return nil, o.fail(cmd, ExitCommandError, fileErrorCode(err), fmt.Sprintf("failed to load %s", path), err)
	}
	logger := o.logger()
	for _, perr := range res.Skipped {
		logger.Warn("row skipped", "path", path, "line", perr.Line, "reason", perr.Reason, "detail", perr.Message)
	}
	o.formatter(cmd).VerboseLog("Loaded %s: %d record(s), %d row(s) skipped", path, res.Loaded, len(res.Skipped))
	return res, nil
}

// fail reports an error in the configured format and returns the matching
// ExitError, already marked as reported.
func (o *RootOptions) fail(cmd *cobra.Command, exitCode int, code, message string, err error) error {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	_ = o.formatter(cmd).Error(code, message, details)

	exitErr := WrapExitError(exitCode, fmt.Sprintf("[%s] %s", code, message), err)
	exitErr.Reported = true
	return exitErr
}
