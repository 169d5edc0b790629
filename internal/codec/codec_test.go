package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	for _, r := range []record.Record{
		{ID: 2301234, Name: "Joshua Chen", Programme: "Software Engineering", Mark: 70.5},
		{ID: 2201234, Name: "Isaac Teo", Programme: "Computer Science", Mark: 63.4},
		{ID: 2401234, Name: "Michelle Lee", Programme: "Information Security", Mark: 73.2},
	} {
		require.NoError(t, s.Insert(r))
	}
	return s
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, IsNotExist(err))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
}

func TestLoad_EmptyFileIsEmptyStore(t *testing.T) {
	res, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.True(t, res.NoHeader)
	assert.True(t, res.Store.IsEmpty())
	assert.Equal(t, 0, res.Loaded)
}

func TestLoad_HeaderOnly(t *testing.T) {
	res, err := Load(writeFile(t, Header))
	require.NoError(t, err)
	assert.False(t, res.NoHeader)
	assert.True(t, res.Store.IsEmpty())
}

func TestLoad_HeaderNotValidated(t *testing.T) {
	res, err := Load(writeFile(t, "whatever goes here\n1\tAli\tCS\t80\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
}

func TestLoad_MalformedRowTolerance(t *testing.T) {
	content := Header +
		"1\tAli\tCS\t80.00\n" +
		"2\tBen\tCS 75.00\n"
	res, err := Load(writeFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Store.Len())
	assert.Equal(t, 1, res.Loaded)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Line)
	assert.Equal(t, ReasonMissingTab, res.Skipped[0].Reason)
	assert.Contains(t, res.Skipped[0].Error(), "no 3rd TAB")
}

func TestLoad_MissingThirdTabOnLine2(t *testing.T) {
	content := Header + "2\tBen\tCS 75.00\n" + "1\tAli\tCS\t80.00\n"
	res, err := Load(writeFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Store.Len())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
	assert.Equal(t, "line 2: need 4 fields (no 3rd TAB)", res.Skipped[0].Error())
}

func TestLoad_SkipPolicy(t *testing.T) {
	content := strings.Join([]string{
		"ID\tName\tProgramme\tMark",
		"no tabs at all",          // line 2
		"x\tBad\tID\t50",          // line 3
		"3\tBad\tMark\tabc",       // line 4
		"",                        // line 5, blank, silently skipped
		"4\tOver\tRange\t101",     // line 6
		"5\tGood\tRow\t88.5",      // line 7
		"5\tDup\tRow\t10",         // line 8
		"6\tOneTab",               // line 9
		"7 \tTrailing\tJunk\t66x", // line 10, prefix parses
	}, "\n") + "\n"

	res, err := Load(writeFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Loaded)
	got, ok := res.Store.Find(5)
	require.True(t, ok)
	assert.Equal(t, "Good", got.Name, "first occurrence of a duplicate id wins")

	got, ok = res.Store.Find(7)
	require.True(t, ok)
	assert.Equal(t, 66.0, got.Mark)

	type skip struct {
		line   int
		reason Reason
	}
	var skips []skip
	for _, pe := range res.Skipped {
		skips = append(skips, skip{pe.Line, pe.Reason})
	}
	assert.Equal(t, []skip{
		{2, ReasonMissingTab},
		{3, ReasonBadID},
		{4, ReasonBadMark},
		{6, ReasonMarkRange},
		{8, ReasonDuplicate},
		{9, ReasonMissingTab},
	}, skips)

	assert.ErrorIs(t, res.Skipped[4], store.ErrDuplicateKey)
	assert.Contains(t, res.Skipped[0].Error(), "no 1st TAB")
	assert.Contains(t, res.Skipped[5].Error(), "no 2nd TAB")
}

func TestLoad_CRLFAndMissingFinalNewline(t *testing.T) {
	res, err := Load(writeFile(t, "ID\tName\tProgramme\tMark\r\n1\tA\tCS\t50.00\r\n2\tB\tCS\t60.00"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Loaded)

	got, _ := res.Store.Find(1)
	assert.Equal(t, "A", got.Name)
	got, _ = res.Store.Find(2)
	assert.Equal(t, 60.0, got.Mark)
}

func TestLoad_TruncatesLongFields(t *testing.T) {
	long := strings.Repeat("n", record.MaxFieldLen+10)
	res, err := Load(writeFile(t, Header+"1\t"+long+"\t"+long+"\t50\n"))
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	got, _ := res.Store.Find(1)
	assert.Len(t, got.Name, record.MaxFieldLen)
	assert.Len(t, got.Programme, record.MaxFieldLen)
}

func TestLoad_ExtraTabsStayInMark(t *testing.T) {
	// Only three tabs split; anything after the third belongs to Mark and
	// the float prefix still parses.
	res, err := Load(writeFile(t, Header+"1\tA\tCS\t70.5\textra\n"))
	require.NoError(t, err)
	got, ok := res.Store.Find(1)
	require.True(t, ok)
	assert.Equal(t, 70.5, got.Mark)
}

func TestSave_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleStore(t)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sample_table", buf.Bytes())
}

func TestSave_Sanitizes(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Insert(record.Record{ID: 1, Name: "A\tB", Programme: "C\r\nS", Mark: 80}))

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, Save(s, path, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"1\tA B\tC  S\t80.00\n", string(data))

	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		assert.Equal(t, 3, strings.Count(line, "\t"), line)
	}
}

func TestSave_TwoDecimals(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Insert(record.Record{ID: 1, Name: "A", Programme: "CS", Mark: 66.666}))
	require.NoError(t, s.Insert(record.Record{ID: 2, Name: "B", Programme: "CS", Mark: 100}))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	assert.Equal(t, Header+"1\tA\tCS\t66.67\n2\tB\tCS\t100.00\n", buf.String())
}

func TestSave_TruncatesExisting(t *testing.T) {
	path := writeFile(t, strings.Repeat("old content\n", 50))

	for _, atomic := range []bool{false, true} {
		require.NoError(t, Save(store.New(), path, Options{Atomic: atomic}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, Header, string(data))
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "db.txt")

	for _, atomic := range []bool{false, true} {
		err := Save(store.New(), path, Options{Atomic: atomic})
		require.Error(t, err)
		var ioErr *IOError
		assert.True(t, errors.As(err, &ioErr))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		s := sampleStore(t)
		path := filepath.Join(t.TempDir(), "rt.txt")
		require.NoError(t, Save(s, path, Options{Atomic: atomic}))

		res, err := Load(path)
		require.NoError(t, err)
		require.Empty(t, res.Skipped)
		assert.Equal(t, s.Len(), res.Loaded)

		want := s.Records()
		got := res.Store.Records()
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].Name, got[i].Name)
			assert.Equal(t, want[i].Programme, got[i].Programme)
			assert.InDelta(t, want[i].Mark, got[i].Mark, 0.005)
		}
	}
}

func TestRoundTrip_SecondSaveIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")

	require.NoError(t, Save(sampleStore(t), first, Options{}))
	res, err := Load(first)
	require.NoError(t, err)
	require.NoError(t, Save(res.Store, second, Options{}))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
