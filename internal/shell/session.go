package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/roach88/cms/internal/autosave"
	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/config"
	"github.com/roach88/cms/internal/journal"
	"github.com/roach88/cms/internal/prompt"
	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

// Options configures a Session.
type Options struct {
	Config *config.Config
	In     io.Reader
	Out    io.Writer

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Journal is optional; nil disables auditing.
	Journal *journal.Journal

	// Sessions generates the session id. Defaults to UUIDv7Generator.
	Sessions journal.SessionGenerator

	// Color enables ANSI colour on status lines.
	Color bool
}

// Session is one interactive run of the shell.
type Session struct {
	cfg       *config.Config
	codecOpts codec.Options
	store     *store.Store
	primary   string
	opened    bool
	checked   bool
	dirty     bool
	sink      *autosave.Sink
	journal   *journal.Journal
	validator *record.Validator
	id        string

	in  *prompt.Reader
	out io.Writer
	log *slog.Logger

	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

// errExit ends the command loop.
var errExit = errors.New("exit")

// New creates a session. Nothing is read or written until Run.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	validator, err := record.NewValidator()
	if err != nil {
		return nil, err
	}

	gen := opts.Sessions
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}
	id := gen.Generate()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	codecOpts := codec.Options{Atomic: cfg.Database.Atomic()}
	s := &Session{
		cfg:       cfg,
		codecOpts: codecOpts,
		store:     store.New(),
		primary:   cfg.Database.Primary,
		sink:      autosave.New(cfg.Database.Autosave, codecOpts),
		journal:   opts.Journal,
		validator: validator,
		id:        id,
		in:        prompt.NewReader(opts.In, opts.Out),
		out:       opts.Out,
		log:       logger.With("session", id),
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
		fail:      color.New(color.FgRed),
	}
	for _, c := range []*color.Color{s.ok, s.warn, s.fail} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s, nil
}

// ID returns the session id attached to logs and journal entries.
func (s *Session) ID() string {
	return s.id
}

// Store returns the live store. Intended for tests and embedding callers.
func (s *Session) Store() *store.Store {
	return s.store
}

// Run performs the startup recovery check for the configured primary file,
// then reads and executes commands until EXIT, QUIT or end of input.
func (s *Session) Run(ctx context.Context) error {
	s.log.Debug("session started", "primary", s.primary, "autosave", s.sink.Path())
	fmt.Fprintln(s.out, "CMS shell. Type HELP for a list of commands.")

	if err := s.recover(ctx, s.primary); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.in.Line(s.cfg.Shell.Prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			s.farewell()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// Execute runs one command line. User mistakes are printed, not returned;
// the returned error is reserved for failures that should end the session.
func (s *Session) Execute(ctx context.Context, line string) error {
	cmd, rest := splitCommand(line)
	if cmd == "" {
		return nil
	}
	s.log.Debug("dispatch", "command", cmd, "args", rest)

	switch cmd {
	case "HELP":
		s.help()
		return nil
	case "EXIT", "QUIT":
		s.farewell()
		return errExit
	case "OPEN":
		return s.open(ctx, rest)
	}

	handler, known := s.handlers()[cmd]
	if !known {
		s.fail.Fprintf(s.out, "Unknown command %q. Type HELP for a list of commands.\n", cmd)
		return nil
	}
	if !s.opened {
		s.fail.Fprintln(s.out, "No database is open. Use OPEN first.")
		return nil
	}
	return handler(ctx, rest)
}

func (s *Session) handlers() map[string]func(context.Context, string) error {
	return map[string]func(context.Context, string) error{
		"SHOW":   s.show,
		"INSERT": s.insert,
		"QUERY":  s.query,
		"UPDATE": s.update,
		"DELETE": s.delete,
		"SORT":   s.sort,
		"SAVE":   s.save,
	}
}

// userError prints a command mistake.
func (s *Session) userError(err error) {
	s.fail.Fprintf(s.out, "Error: %v\n", err)
}

// autosave writes the shadow file after a mutation. Failure is reported and
// logged but never ends the session.
func (s *Session) autosave() {
	wrote, err := s.sink.Save(s.store)
	if err != nil {
		s.log.Warn("autosave failed", "path", s.sink.Path(), "error", err)
		s.fail.Fprintln(s.out, "Error: Autosave failed.")
		return
	}
	if wrote {
		s.ok.Fprintf(s.out, "CMS: Autosave completed. (%s updated)\n", s.sink.Path())
	}
}

// audit appends a journal entry when a journal is attached. Journal
// failures are logged only.
func (s *Session) audit(ctx context.Context, op journal.Op, id *int, detail map[string]any) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Entry{
		Session:  s.id,
		Op:       op,
		RecordID: id,
		Detail:   detail,
	}); err != nil {
		s.log.Warn("journal append failed", "op", op, "error", err)
	}
}

func (s *Session) farewell() {
	if s.dirty {
		s.warn.Fprintf(s.out, "Unsaved changes remain in %s and will be offered for recovery next time.\n", s.sink.Path())
	}
	fmt.Fprintln(s.out, "Goodbye.")
}

func (s *Session) help() {
	fmt.Fprint(s.out, `Commands:
  OPEN [file]                                  load the database (default from config)
  SHOW ALL                                     list every record
  SHOW SUMMARY                                 count, average, highest and lowest mark
  INSERT ID=<id> Name=<n> Programme=<p> Mark=<m>  new IDs have exactly 7 digits
  QUERY ID=<id>
  UPDATE ID=<id> [Name=<n>] [Programme=<p>] [Mark=<m>]
  DELETE ID=<id>
  SORT BY [ID|MARK] [ASC|DESC]
  SAVE                                         write the database file
  EXIT | QUIT
`)
}
