package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cms/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Session  string
	Limit    int
	Sessions bool
}

// JournalResult is the JSON payload of the journal command.
type JournalResult struct {
	Path    string          `json:"path"`
	Entries []journal.Entry `json:"entries"`
}

func (r JournalResult) String() string {
	if len(r.Entries) == 0 {
		return "No journal entries.\n"
	}
	var b strings.Builder
	for _, e := range r.Entries {
		b.WriteString(formatEntry(e))
		b.WriteByte('\n')
	}
	return b.String()
}

// SessionsResult is the JSON payload of journal --sessions.
type SessionsResult struct {
	Path     string   `json:"path"`
	Sessions []string `json:"sessions"`
}

func (r SessionsResult) String() string {
	if len(r.Sessions) == 0 {
		return "No journal entries.\n"
	}
	return strings.Join(r.Sessions, "\n") + "\n"
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal <db>",
		Short: "List audit journal entries",
		Long: `List the commands recorded in a shell audit journal, oldest first.

Examples:
  cms journal cms.db
  cms journal cms.db --limit 20
  cms journal cms.db --sessions
  cms journal cms.db --session 01923f5e-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "only entries from this session id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent N entries (0 = all)")
	cmd.Flags().BoolVar(&opts.Sessions, "sessions", false, "list session ids, oldest first, instead of entries")
	cmd.MarkFlagsMutuallyExclusive("sessions", "session")

	return cmd
}

func runJournal(opts *JournalOptions, path string, cmd *cobra.Command) error {
	// Opening would create an empty journal; refuse instead.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return opts.fail(cmd, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("journal %s not found", path), err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return opts.fail(cmd, ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	if opts.Sessions {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return opts.fail(cmd, ExitCommandError, ErrCodeJournal, "failed to list sessions", err)
		}
		return f.Success(SessionsResult{Path: path, Sessions: sessions})
	}

	entries, err := j.List(ctx, journal.ListOptions{Session: opts.Session, Limit: opts.Limit})
	if err != nil {
		return opts.fail(cmd, ExitCommandError, ErrCodeJournal, "failed to list journal", err)
	}
	f.Session = opts.Session
	f.VerboseLog("Read %d entry(ies) from %s", len(entries), path)
	return f.Success(JournalResult{Path: path, Entries: entries})
}

// formatEntry renders one entry as a single text line.
func formatEntry(e journal.Entry) string {
	id := "-"
	if e.RecordID != nil {
		id = fmt.Sprintf("%d", *e.RecordID)
	}
	line := fmt.Sprintf("%4d  %s  %s  %-7s  %-7s",
		e.Seq, e.At.UTC().Format(time.RFC3339), shortSession(e.Session), e.Op, id)
	if len(e.Detail) > 0 {
		detail, err := json.Marshal(e.Detail)
		if err == nil {
			line += "  " + string(detail)
		}
	}
	return line
}

func shortSession(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
