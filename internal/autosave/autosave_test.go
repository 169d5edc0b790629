package autosave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

func TestSink_DisarmedIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.txt")
	sink := New(path, codec.Options{})

	saved, err := sink.Save(store.New())
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing written before the primary is opened")
}

func TestSink_ArmedWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.txt")
	sink := New(path, codec.Options{Atomic: true})
	sink.Arm()
	require.True(t, sink.Armed())

	st := store.New()
	require.NoError(t, st.Insert(record.Record{ID: 1, Name: "Ali", Programme: "CS", Mark: 80}))

	saved, err := sink.Save(st)
	require.NoError(t, err)
	assert.True(t, saved)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, codec.Header+"1\tAli\tCS\t80.00\n", string(data))
}

func TestSink_FailureReported(t *testing.T) {
	sink := New(filepath.Join(t.TempDir(), "no", "such", "dir", "autosave.txt"), codec.Options{})
	sink.Arm()

	saved, err := sink.Save(store.New())
	assert.Error(t, err)
	assert.False(t, saved)
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, New("", codec.Options{}).Path())
}
