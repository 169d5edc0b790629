package shell

import (
	"context"
	"fmt"

	"github.com/roach88/cms/internal/journal"
	"github.com/roach88/cms/internal/recovery"
	"github.com/roach88/cms/internal/table"
)

// recover compares primary against the shadow file once per session. When
// they diverge it shows both versions and a diff, asks whether to keep the
// autosaved changes, applies the answer and adopts the result as the open
// database. End of input while asking counts as discard.
func (s *Session) recover(ctx context.Context, primary string) error {
	s.checked = true
	c := &recovery.Coordinator{
		Primary: primary,
		Shadow:  s.sink.Path(),
		Options: s.codecOpts,
	}

	status, err := c.Check()
	if err != nil {
		s.log.Warn("recovery check failed", "primary", primary, "shadow", c.Shadow, "error", err)
		s.userError(err)
		return nil
	}
	s.log.Debug("recovery check", "primary", primary, "shadow", c.Shadow, "status", status)
	if status != recovery.StatusDiverged {
		return nil
	}

	primaryRes, shadowRes, err := c.Candidates()
	if err != nil {
		s.log.Warn("load recovery candidates", "error", err)
		s.userError(err)
		return nil
	}

	s.warn.Fprintf(s.out, "The autosave file %s differs from %s.\n", c.Shadow, c.Primary)
	fmt.Fprintf(s.out, "\nSaved database (%s):\n", c.Primary)
	fmt.Fprint(s.out, table.Records(primaryRes.Store.Records()))
	fmt.Fprintf(s.out, "\nAutosaved changes (%s):\n", c.Shadow)
	fmt.Fprint(s.out, table.Records(shadowRes.Store.Records()))
	if diff, err := c.Diff(); err != nil {
		s.log.Warn("recovery diff failed", "error", err)
	} else if diff != "" {
		fmt.Fprintf(s.out, "\n%s", diff)
	}

	answer, err := s.in.YesNo("Do you want to keep the autosaved changes? Type \"Y\" to keep or \"N\" to discard.\n")
	if err != nil {
		return fmt.Errorf("read recovery decision: %w", err)
	}
	decision := recovery.Discard
	if answer.Confirmed() && answer.Value {
		decision = recovery.Keep
	}

	res, err := c.Resolve(decision)
	if err != nil {
		s.log.Warn("recovery failed", "decision", decision, "error", err)
		s.userError(err)
		return nil
	}
	s.adopt(primary, res)

	if decision == recovery.Keep {
		s.ok.Fprintf(s.out, "Autosaved changes kept. %s now holds %d record(s).\n", primary, res.Loaded)
	} else {
		s.ok.Fprintf(s.out, "Autosaved changes discarded. %s restored from %s.\n", c.Shadow, primary)
	}
	s.audit(ctx, journal.OpRecover, nil, map[string]any{
		"decision": decision.String(),
		"primary":  primary,
		"shadow":   c.Shadow,
		"records":  res.Loaded,
	})
	return nil
}
