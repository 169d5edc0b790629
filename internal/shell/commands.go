package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/journal"
	"github.com/roach88/cms/internal/prompt"
	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
	"github.com/roach88/cms/internal/table"
)

func (s *Session) open(ctx context.Context, rest string) error {
	path := strings.TrimSpace(rest)
	if path == "" {
		path = s.cfg.Database.Primary
	}

	if !s.checked {
		if err := s.recover(ctx, path); err != nil {
			return err
		}
		if s.opened && s.primary == path {
			return nil
		}
	}

	res, err := codec.Load(path)
	if err != nil {
		if codec.IsNotExist(err) {
			s.fail.Fprintf(s.out, "Error: Cannot open file %s\n", path)
			return nil
		}
		s.log.Warn("open failed", "path", path, "error", err)
		s.userError(err)
		return nil
	}
	s.adopt(path, res)
	s.ok.Fprintf(s.out, "File has been successfully opened and read. Loaded %d record(s).\n", res.Loaded)
	s.audit(ctx, journal.OpOpen, nil, map[string]any{
		"path":    path,
		"loaded":  res.Loaded,
		"skipped": len(res.Skipped),
	})
	return nil
}

// adopt makes a freshly loaded file the session's database and arms
// autosave.
func (s *Session) adopt(path string, res *codec.LoadResult) {
	for _, perr := range res.Skipped {
		s.log.Warn("row skipped", "path", path, "line", perr.Line, "reason", perr.Reason)
		s.warn.Fprintf(s.out, "Line %d: %s. Skipping.\n", perr.Line, perr.Message)
	}
	s.store = res.Store
	s.primary = path
	s.opened = true
	s.dirty = false
	s.sink.Arm()
}

func (s *Session) show(_ context.Context, rest string) error {
	switch record.NormalizeToken(rest) {
	case "ALL":
		fmt.Fprint(s.out, table.Records(s.store.Records()))
		fmt.Fprintf(s.out, "There are in total of %d records discovered.\n", s.store.Len())
	case "SUMMARY":
		sum, ok := s.store.Summarize()
		if !ok {
			fmt.Fprintln(s.out, "There are no records to summarize.")
			return nil
		}
		fmt.Fprint(s.out, table.Summary(sum))
	default:
		s.fail.Fprintln(s.out, "Usage: SHOW ALL | SHOW SUMMARY")
	}
	return nil
}

func (s *Session) insert(ctx context.Context, rest string) error {
	args, err := parseArgs(rest)
	if err != nil {
		s.userError(err)
		return nil
	}
	for _, k := range []string{keyID, keyName, keyProgramme, keyMark} {
		if _, ok := args[k]; !ok {
			s.fail.Fprintln(s.out, "Usage: INSERT ID=<id> Name=<name> Programme=<programme> Mark=<mark>")
			return nil
		}
	}

	id, err := record.ParseID(args[keyID])
	if err != nil {
		s.userError(err)
		return nil
	}
	if _, exists := s.store.Find(id); exists {
		s.fail.Fprintf(s.out, "The record with ID=%d already exists.\n", id)
		return nil
	}
	mark, err := record.ParseMark(args[keyMark])
	if err != nil {
		s.userError(err)
		return nil
	}
	r := record.Record{
		ID:        id,
		Name:      record.Clean(args[keyName]),
		Programme: record.Clean(args[keyProgramme]),
		Mark:      mark,
	}
	if err := s.validator.Validate(r); err != nil {
		s.userError(err)
		return nil
	}
	if err := s.store.Insert(r); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			s.fail.Fprintf(s.out, "The record with ID=%d already exists.\n", id)
			return nil
		}
		s.userError(err)
		return nil
	}

	s.dirty = true
	s.ok.Fprintf(s.out, "A new record with ID=%d is successfully inserted.\n", id)
	s.autosave()
	s.audit(ctx, journal.OpInsert, &id, map[string]any{
		"name":      r.Name,
		"programme": r.Programme,
		"mark":      r.Mark,
	})
	return nil
}

func (s *Session) query(_ context.Context, rest string) error {
	args, err := parseArgs(rest)
	if err != nil {
		s.userError(err)
		return nil
	}
	id, err := requireID(args)
	if err != nil {
		s.userError(err)
		return nil
	}
	r, ok := s.store.Find(id)
	if !ok {
		fmt.Fprintf(s.out, "The record with ID=%d does not exist.\n", id)
		return nil
	}
	fmt.Fprintf(s.out, "The record with ID=%d is found in the data table.\n", id)
	fmt.Fprint(s.out, table.Record(r))
	return nil
}

func (s *Session) update(ctx context.Context, rest string) error {
	args, err := parseArgs(rest)
	if err != nil {
		s.userError(err)
		return nil
	}
	id, err := requireID(args)
	if err != nil {
		s.userError(err)
		return nil
	}
	current, ok := s.store.Find(id)
	if !ok {
		fmt.Fprintf(s.out, "The record with ID=%d does not exist.\n", id)
		return nil
	}

	var patch record.Patch
	detail := map[string]any{}
	if v, ok := args[keyName]; ok {
		name := record.Clean(v)
		patch.Name = &name
		detail["name"] = name
	}
	if v, ok := args[keyProgramme]; ok {
		prog := record.Clean(v)
		patch.Programme = &prog
		detail["programme"] = prog
	}
	if v, ok := args[keyMark]; ok {
		mark, err := record.ParseMark(v)
		if err != nil {
			s.userError(err)
			return nil
		}
		patch.Mark = &mark
		detail["mark"] = mark
	}
	if patch.IsEmpty() {
		s.fail.Fprintln(s.out, "Usage: UPDATE ID=<id> [Name=<name>] [Programme=<programme>] [Mark=<mark>]")
		return nil
	}

	candidate := current
	patch.Apply(&candidate)
	if err := s.validator.ValidateFields(candidate); err != nil {
		s.userError(err)
		return nil
	}

	changed, err := s.store.Update(id, patch)
	if err != nil {
		s.userError(err)
		return nil
	}
	if !changed {
		fmt.Fprintf(s.out, "No changes made to the record with ID=%d.\n", id)
		return nil
	}

	s.dirty = true
	s.ok.Fprintf(s.out, "The record with ID=%d is successfully updated.\n", id)
	s.autosave()
	s.audit(ctx, journal.OpUpdate, &id, detail)
	return nil
}

func (s *Session) delete(ctx context.Context, rest string) error {
	args, err := parseArgs(rest)
	if err != nil {
		s.userError(err)
		return nil
	}
	id, err := requireID(args)
	if err != nil {
		s.userError(err)
		return nil
	}
	if _, ok := s.store.Find(id); !ok {
		fmt.Fprintf(s.out, "The record with ID=%d does not exist.\n", id)
		return nil
	}

	answer, err := s.in.YesNo(fmt.Sprintf(
		"Are you sure you want to delete record with ID=%d? Type \"Y\" to Confirm or type \"N\" to cancel.\n", id))
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !answer.Confirmed() || !answer.Value {
		fmt.Fprintln(s.out, "The deletion is cancelled.")
		return nil
	}

	s.store.Delete(id)
	s.dirty = true
	s.ok.Fprintf(s.out, "The record with ID=%d is successfully deleted.\n", id)
	s.autosave()
	s.audit(ctx, journal.OpDelete, &id, nil)
	return nil
}

func (s *Session) sort(ctx context.Context, rest string) error {
	words := strings.Fields(rest)
	if len(words) == 0 || record.NormalizeToken(words[0]) != "BY" || len(words) > 3 {
		s.fail.Fprintln(s.out, "Usage: SORT BY [ID|MARK] [ASC|DESC]")
		return nil
	}
	words = words[1:]

	var field record.Field
	if len(words) > 0 {
		f, err := record.ParseField(words[0])
		if err != nil {
			s.userError(err)
			return nil
		}
		field = f
		words = words[1:]
	} else {
		res, err := s.in.SortField("Sort by ID or MARK? ")
		if err != nil {
			return fmt.Errorf("read sort field: %w", err)
		}
		if !res.Confirmed() {
			fmt.Fprintln(s.out, "Sort cancelled.")
			return nil
		}
		field = res.Value
	}

	var ascending bool
	if len(words) > 0 {
		asc, ok := prompt.ParseDirection(words[0])
		if !ok {
			s.fail.Fprintln(s.out, "Usage: SORT BY [ID|MARK] [ASC|DESC]")
			return nil
		}
		ascending = asc
	} else {
		res, err := s.in.Direction("Ascending or descending? (ASC/DESC): ")
		if err != nil {
			return fmt.Errorf("read sort direction: %w", err)
		}
		if !res.Confirmed() {
			fmt.Fprintln(s.out, "Sort cancelled.")
			return nil
		}
		ascending = res.Value
	}

	s.store.SortBy(field, ascending)
	order := "descending"
	if ascending {
		order = "ascending"
	}
	s.ok.Fprintf(s.out, "Records sorted by %s in %s order.\n", field, order)
	fmt.Fprint(s.out, table.Records(s.store.Records()))
	s.audit(ctx, journal.OpSort, nil, map[string]any{
		"field":     field.String(),
		"ascending": ascending,
	})
	return nil
}

func (s *Session) save(ctx context.Context, _ string) error {
	if err := codec.Save(s.store, s.primary, s.codecOpts); err != nil {
		s.log.Warn("save failed", "path", s.primary, "error", err)
		s.userError(err)
		return nil
	}
	s.dirty = false
	s.ok.Fprintf(s.out, "The database file %q is successfully saved.\n", s.primary)
	s.autosave()
	s.audit(ctx, journal.OpSave, nil, map[string]any{
		"path":    s.primary,
		"records": s.store.Len(),
	})
	return nil
}
