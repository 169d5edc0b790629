package shell

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cms/internal/journal"
	"github.com/roach88/cms/internal/testutil"
)

var (
	savedTable     = testutil.Table("1000001\tAli\tCS\t80.00")
	autosavedTable = testutil.Table("1000001\tAli\tCS\t81.00")
)

func writeDivergedPair(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, primaryFile, savedTable)
	testutil.WriteFile(t, dir, shadowFile, autosavedTable)
	return dir
}

func TestRecovery_Discard(t *testing.T) {
	dir := writeDivergedPair(t)
	s, out := runScript(t, dir, lines("N"), nil)

	assert.Contains(t, out, "The autosave file autosave.txt differs from P3_1-CMS.txt.")
	assert.Contains(t, out, "-1000001\tAli\tCS\t80.00")
	assert.Contains(t, out, "+1000001\tAli\tCS\t81.00")
	assert.Contains(t, out, "Autosaved changes discarded.")

	assert.Equal(t, savedTable, testutil.ReadFile(t, filepath.Join(dir, shadowFile)))
	assert.Equal(t, savedTable, testutil.ReadFile(t, filepath.Join(dir, primaryFile)))
	r, ok := s.Store().Find(1000001)
	require.True(t, ok)
	assert.Equal(t, 80.0, r.Mark)
}

func TestRecovery_Keep(t *testing.T) {
	dir := writeDivergedPair(t)
	s, out := runScript(t, dir, lines("Y"), nil)

	assert.Contains(t, out, "Autosaved changes kept.")
	assert.Equal(t, autosavedTable, testutil.ReadFile(t, filepath.Join(dir, primaryFile)))
	r, ok := s.Store().Find(1000001)
	require.True(t, ok)
	assert.Equal(t, 81.0, r.Mark)
}

func TestRecovery_EOFDiscards(t *testing.T) {
	dir := writeDivergedPair(t)
	_, out := runScript(t, dir, "", nil)

	assert.Contains(t, out, "Autosaved changes discarded.")
	assert.Equal(t, savedTable, testutil.ReadFile(t, filepath.Join(dir, shadowFile)))
}

func TestRecovery_RepromptsUntilYesOrNo(t *testing.T) {
	dir := writeDivergedPair(t)
	_, out := runScript(t, dir, lines("perhaps", "", "yes"), nil)

	assert.Contains(t, out, "Please type Y or N: ")
	assert.Contains(t, out, "Autosaved changes kept.")
}

func TestRecovery_ResolvedSessionIsOpen(t *testing.T) {
	dir := writeDivergedPair(t)
	_, out := runScript(t, dir, lines("N", "UPDATE ID=1000001 Mark=90"), nil)

	assert.NotContains(t, out, "No database is open")
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(dir, shadowFile)), "1000001\tAli\tCS\t90.00\n")
}

func TestRecovery_InSyncIsSilent(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, primaryFile, savedTable)
	testutil.WriteFile(t, dir, shadowFile, savedTable)
	_, out := runScript(t, dir, lines("SHOW ALL"), nil)

	assert.NotContains(t, out, "differs")
	assert.Contains(t, out, "No database is open", "an in-sync pair still needs OPEN")
}

func TestRecovery_Journaled(t *testing.T) {
	dir := writeDivergedPair(t)
	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	runScript(t, dir, lines("Y"), j)

	entries, err := j.List(context.Background(), journal.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.OpRecover, entries[0].Op)
	assert.Equal(t, "keep", entries[0].Detail["decision"])
}
