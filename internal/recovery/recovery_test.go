package recovery

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cms/internal/codec"
)

const header = "ID\tName\tProgramme\tMark\n"

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDiverged_SameFile(t *testing.T) {
	path := write(t, t.TempDir(), "a.txt", header+"1\tAli\tCS\t80.00\n")

	diverged, err := Diverged(path, path)
	require.NoError(t, err)
	assert.False(t, diverged)
}

func TestDiverged_Cases(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		shadow  string
		want    bool
	}{
		{"identical", "1\tAli\tCS\t80.00\n", "1\tAli\tCS\t80.00\n", false},
		{"both empty", "", "", false},
		{"one byte differs", "1\tAli\tCS\t80.00\n", "1\tAli\tCS\t81.00\n", true},
		{"shadow longer", "abc", "abcd", true},
		{"primary longer", "abcd", "abc", true},
		{"trailing whitespace", "abc\n", "abc \n", true},
		{"one empty", "", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p := write(t, dir, "p.txt", tt.primary)
			s := write(t, dir, "s.txt", tt.shadow)

			got, err := Diverged(p, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiverged_MissingFile(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "p.txt", "x")

	_, err := Diverged(p, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.True(t, codec.IsNotExist(err))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	c := &Coordinator{Primary: filepath.Join(dir, "p.txt"), Shadow: filepath.Join(dir, "s.txt")}

	st, err := c.Check()
	require.NoError(t, err)
	assert.Equal(t, StatusNoPrimary, st)

	write(t, dir, "p.txt", header)
	st, err = c.Check()
	require.NoError(t, err)
	assert.Equal(t, StatusNoShadow, st, "a missing shadow is not divergence")

	write(t, dir, "s.txt", header)
	st, err = c.Check()
	require.NoError(t, err)
	assert.Equal(t, StatusInSync, st)

	write(t, dir, "s.txt", header+"1\tAli\tCS\t80.00\n")
	st, err = c.Check()
	require.NoError(t, err)
	assert.Equal(t, StatusDiverged, st)
}

func TestResolve_Discard(t *testing.T) {
	dir := t.TempDir()
	primary := header + "1\tAli\tCS\t80.00\n"
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", primary),
		Shadow:  write(t, dir, "s.txt", header+"1\tAli\tCS\t81.00\n"),
	}

	diverged, err := Diverged(c.Primary, c.Shadow)
	require.NoError(t, err)
	require.True(t, diverged)

	res, err := c.Resolve(Discard)
	require.NoError(t, err)

	got, ok := res.Store.Find(1)
	require.True(t, ok)
	assert.Equal(t, 80.0, got.Mark)
	assert.Equal(t, primary, read(t, c.Shadow), "shadow overwritten to match the primary exactly")
	assert.Equal(t, primary, read(t, c.Primary))

	diverged, err = Diverged(c.Primary, c.Shadow)
	require.NoError(t, err)
	assert.False(t, diverged)
}

func TestResolve_DiscardHeaderlessPrimary(t *testing.T) {
	dir := t.TempDir()
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", "1\tAli\tCS\t80.00\n"),
		Shadow:  write(t, dir, "s.txt", "1\tAli\tCS\t81.00\n"),
	}

	diverged, err := Diverged(c.Primary, c.Shadow)
	require.NoError(t, err)
	require.True(t, diverged)

	_, err = c.Resolve(Discard)
	require.NoError(t, err)
	assert.Equal(t, "1\tAli\tCS\t80.00\n", read(t, c.Shadow))
}

func TestResolve_NonCanonicalPrimaryStaysInSync(t *testing.T) {
	primary := header + "1\tAli\tCS\t80\r\n\n2\tBen\n3\tCai\tSE\t70.5\r\n"

	for _, atomic := range []bool{false, true} {
		t.Run(fmt.Sprintf("atomic=%v", atomic), func(t *testing.T) {
			dir := t.TempDir()
			c := &Coordinator{
				Primary: write(t, dir, "p.txt", primary),
				Shadow:  write(t, dir, "s.txt", header+"1\tAli\tCS\t99.00\n"),
				Options: codec.Options{Atomic: atomic},
			}

			res, err := c.Resolve(Discard)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Store.Len())
			assert.Len(t, res.Skipped, 1)

			st, err := c.Check()
			require.NoError(t, err)
			assert.Equal(t, StatusInSync, st)
			assert.Equal(t, primary, read(t, c.Shadow))
		})
	}
}

func TestResolve_KeepCopiesShadowBytes(t *testing.T) {
	dir := t.TempDir()
	shadow := "1\tAli\tCS\t81\r\n"
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", header+"1\tAli\tCS\t80.00\n"),
		Shadow:  write(t, dir, "s.txt", shadow),
	}

	res, err := c.Resolve(Keep)
	require.NoError(t, err)
	assert.True(t, res.Store.IsEmpty(), "first line of a headerless file is read as the header")
	assert.Equal(t, shadow, read(t, c.Primary))

	diverged, err := Diverged(c.Primary, c.Shadow)
	require.NoError(t, err)
	assert.False(t, diverged)
}

func TestResolve_MissingSource(t *testing.T) {
	dir := t.TempDir()
	c := &Coordinator{
		Primary: filepath.Join(dir, "missing.txt"),
		Shadow:  write(t, dir, "s.txt", header),
	}

	_, err := c.Resolve(Discard)
	require.Error(t, err)
	assert.True(t, codec.IsNotExist(err))
	assert.Equal(t, header, read(t, c.Shadow))
}

func TestResolve_Keep(t *testing.T) {
	dir := t.TempDir()
	shadow := header + "1\tAli\tCS\t81.00\n2\tBen\tSE\t66.50\n"
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", header+"1\tAli\tCS\t80.00\n"),
		Shadow:  write(t, dir, "s.txt", shadow),
		Options: codec.Options{Atomic: true},
	}

	res, err := c.Resolve(Keep)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Store.Len())
	assert.Equal(t, shadow, read(t, c.Primary))
	assert.Equal(t, shadow, read(t, c.Shadow))
}

func TestCandidates(t *testing.T) {
	dir := t.TempDir()
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", header+"1\tAli\tCS\t80.00\n"),
		Shadow:  write(t, dir, "s.txt", header+"1\tAli\tCS\t80.00\n2\tBen\tSE\t50.00\n"),
	}

	p, s, err := c.Candidates()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Store.Len())
	assert.Equal(t, 2, s.Store.Len())
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	c := &Coordinator{
		Primary: write(t, dir, "p.txt", header+"1\tAli\tCS\t80.00\n"),
		Shadow:  write(t, dir, "s.txt", header+"1\tAli\tCS\t81.00\n"),
	}

	diff, err := c.Diff()
	require.NoError(t, err)
	assert.Contains(t, diff, "-1\tAli\tCS\t80.00")
	assert.Contains(t, diff, "+1\tAli\tCS\t81.00")

	c.Shadow = c.Primary
	diff, err = c.Diff()
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestStatusAndDecisionStrings(t *testing.T) {
	assert.Equal(t, "diverged", StatusDiverged.String())
	assert.Equal(t, "no-shadow", StatusNoShadow.String())
	assert.Equal(t, "keep", Keep.String())
	assert.Equal(t, "discard", Discard.String())
}
