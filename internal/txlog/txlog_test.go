package txlog_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/format"
	"github.com/joshuapare/regview/internal/testutil"
	"github.com/joshuapare/regview/internal/txlog"
	"github.com/joshuapare/regview/pkg/types"
)

// hivePair returns a dirty "before" image and the clean "after" image a log
// should turn it into.
func hivePair(t *testing.T) (before, after []byte) {
	t.Helper()
	before = testutil.BuildHive(&testutil.Key{
		Name:    "ROOT",
		Subkeys: []*testutil.Key{{Name: "Alpha"}},
	}, testutil.WithSequence(2, 1))
	after = testutil.BuildHive(&testutil.Key{
		Name: "ROOT",
		Subkeys: []*testutil.Key{
			{Name: "Alpha", Values: []testutil.Value{testutil.String("v", "1")}},
			{Name: "Beta"},
		},
	}, testutil.WithSequence(2, 2))
	return before, after
}

func entryFor(before, after []byte, seq uint32) testutil.Entry {
	return testutil.Entry{Sequence: seq, BinsSize: testutil.BinsSize(after), Pages: testutil.DiffPages(before, after)}
}

func mustParse(t *testing.T, name string, b []byte) *txlog.Log {
	t.Helper()
	l, err := txlog.Parse(name, b)
	require.NoError(t, err)
	return l
}

func requireBins(t *testing.T, want, got []byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(got), len(want))
	assert.Equal(t, want[format.HeaderSize:], got[format.HeaderSize:len(want)])
}

func TestMarvin32(t *testing.T) {
	data := []byte("registry transaction log")
	a := txlog.Marvin32(txlog.MarvinSeed, data)
	assert.Equal(t, a, txlog.Marvin32(txlog.MarvinSeed, data), "deterministic")
	assert.NotEqual(t, a, txlog.Marvin32(txlog.MarvinSeed^1, data), "seed dependent")

	seen := map[uint64]int{}
	for n := 0; n <= 8; n++ {
		seen[txlog.Marvin32(txlog.MarvinSeed, data[:n])] = n
	}
	assert.Len(t, seen, 9, "every tail length hashes differently")
}

func TestParseNewFormat(t *testing.T) {
	before, after := hivePair(t)
	raw := testutil.BuildLog(before, entryFor(before, after, 1), testutil.Entry{Sequence: 2, BinsSize: testutil.BinsSize(after)})
	l := mustParse(t, "SYSTEM.LOG1", raw)

	assert.Equal(t, txlog.FormatNew, l.Format)
	assert.True(t, l.HeaderValid)
	require.Len(t, l.Entries, 2)
	assert.Equal(t, uint32(1), l.Entries[0].Sequence)
	for _, e := range l.Entries {
		assert.True(t, txlog.VerifyEntry(e))
	}
}

func TestParseStopsAtBadHash(t *testing.T) {
	before, after := hivePair(t)
	first := testutil.EncodeEntry(entryFor(before, after, 1))
	raw := testutil.BuildLog(before, entryFor(before, after, 1), entryFor(before, after, 2))
	raw[format.LogBaseBlockSize+len(first)+format.LogEntryRefsOffset+4] ^= 0xFF

	l := mustParse(t, "SYSTEM.LOG1", raw)
	assert.Len(t, l.Entries, 1)
}

func TestParseRejectsUnknownBody(t *testing.T) {
	before, _ := hivePair(t)
	raw := make([]byte, 1024)
	copy(raw, before[:format.LogBaseBlockSize])
	_, err := txlog.Parse("junk", raw)
	require.ErrorIs(t, err, types.ErrParse)

	_, err = txlog.Parse("short", raw[:100])
	require.ErrorIs(t, err, types.ErrParse)
}

func TestOpen(t *testing.T) {
	before, after := hivePair(t)
	path := testutil.WriteFile(t, "SYSTEM.LOG1", testutil.BuildLog(before, entryFor(before, after, 1)))
	l, err := txlog.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "SYSTEM.LOG1", l.Name)

	_, err = txlog.Open(filepath.Join(t.TempDir(), "missing.LOG2"))
	require.ErrorIs(t, err, types.ErrNoSuchFile)
}

func TestApplyNewFormat(t *testing.T) {
	before, after := hivePair(t)
	l := mustParse(t, "LOG1", testutil.BuildLog(before, entryFor(before, after, 1)))
	snapshot := append([]byte(nil), before...)

	out, res, err := txlog.Apply(before, []*txlog.Log{l})
	require.NoError(t, err)
	assert.Equal(t, snapshot, before, "input left untouched")
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, uint32(2), res.Sequence)
	assert.Empty(t, res.BaseBlockFrom)
	requireBins(t, after, out)

	h, err := format.ValidateHeader(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.PrimarySequence)
	assert.Equal(t, uint32(2), h.SecondarySequence)
	assert.Equal(t, testutil.BinsSize(after), h.HiveBinsDataSize)
}

func TestApplyStopsAtGapAndDropsDuplicates(t *testing.T) {
	before, after := hivePair(t)
	empty := testutil.Entry{BinsSize: testutil.BinsSize(after)}
	e2, e4 := empty, empty
	e2.Sequence, e4.Sequence = 2, 4

	log1 := mustParse(t, "LOG1", testutil.BuildLog(before, entryFor(before, after, 1), e2))
	log2 := mustParse(t, "LOG2", testutil.BuildLog(before, entryFor(before, after, 1), e4))

	out, res, err := txlog.Apply(before, []*txlog.Log{log2, log1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied, "1 and 2 apply once each, 4 follows a gap")
	assert.Equal(t, uint32(3), res.Sequence)
	requireBins(t, after, out)
}

func TestApplySkipsStaleEntries(t *testing.T) {
	before, after := hivePair(t)
	testutil.SetSequence(before, 5, 5)
	l := mustParse(t, "LOG1", testutil.BuildLog(before, entryFor(before, after, 3)))

	out, res, err := txlog.Apply(before, []*txlog.Log{l})
	require.NoError(t, err)
	assert.Zero(t, res.Applied)
	assert.Equal(t, before, out[:len(before)])
}

func TestApplyRecoversBaseBlockFromLog(t *testing.T) {
	before, after := hivePair(t)
	l := mustParse(t, "LOG2", testutil.BuildLog(before, entryFor(before, after, 1)))
	damaged := testutil.ZeroBaseBlock(before)

	out, res, err := txlog.Apply(damaged, []*txlog.Log{l})
	require.NoError(t, err)
	assert.Equal(t, "LOG2", res.BaseBlockFrom)
	assert.Equal(t, 1, res.Applied)
	h, err := format.ValidateHeader(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(format.FileTypePrimary), h.FileType)
	assert.Equal(t, uint32(testutil.RootOffset), h.RootCellOffset)
	requireBins(t, after, out)

	_, _, err = txlog.Apply(damaged, nil)
	require.ErrorIs(t, err, types.ErrParse)
}

func TestApplyLegacy(t *testing.T) {
	before, after := hivePair(t)
	l := mustParse(t, "LOG", testutil.BuildLegacyLog(after, 2, testutil.DiffPages(before, after)))
	require.Equal(t, txlog.FormatLegacy, l.Format)

	out, res, err := txlog.Apply(before, []*txlog.Log{l})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, uint32(2), res.Sequence)
	requireBins(t, after, out)

	clean := append([]byte(nil), before...)
	testutil.SetSequence(clean, 1, 1)
	_, res, err = txlog.Apply(clean, []*txlog.Log{l})
	require.NoError(t, err)
	assert.Zero(t, res.Applied, "legacy logs only patch dirty hives")
}
