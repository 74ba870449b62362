package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hive.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenAndSplit(t *testing.T) {
	want := []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
	src, err := Open(writeTemp(t, want))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, len(want), src.Len())
	assert.Equal(t, want, src.Bytes())

	head, tail, err := src.SplitAt(2)
	require.NoError(t, err)
	assert.Equal(t, want[:2], head.Bytes())
	assert.Equal(t, want[2:], tail.Bytes())

	// mid is relative to the view being split.
	a, b, err := tail.SplitAt(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbe}, a.Bytes())
	assert.Equal(t, []byte{0xef, 0x42}, b.Bytes())

	_, _, err = tail.SplitAt(4)
	assert.Error(t, err)
	_, _, err = tail.SplitAt(-1)
	assert.Error(t, err)
}

func TestSplitViewsCannotGrow(t *testing.T) {
	src := FromBytes([]byte("abcdef"))
	head, _, err := src.SplitAt(3)
	require.NoError(t, err)
	b := head.Bytes()
	assert.Equal(t, 3, cap(b))
}

func TestCloseIsIdempotent(t *testing.T) {
	src, err := Open(writeTemp(t, []byte("regf")))
	require.NoError(t, err)
	head, _, err := src.SplitAt(2)
	require.NoError(t, err)

	require.NoError(t, head.Close())
	require.NoError(t, src.Close())
	assert.Nil(t, src.Bytes())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(t.TempDir())
	assert.Error(t, err, "directories are rejected")
}

func TestOpenEmptyFile(t *testing.T) {
	src, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	assert.Zero(t, src.Len())
	assert.Empty(t, src.Bytes())
	require.NoError(t, src.Close())
}
