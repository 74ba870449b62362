package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/buf"
	"github.com/joshuapare/regview/internal/format"
)

func TestBuildHiveRootNode(t *testing.T) {
	hive := BuildHive(WindowsLike())
	_, err := format.ValidateHeader(hive[:format.HeaderSize])
	require.NoError(t, err)

	bins := hive[format.HeaderSize:]
	cell, err := format.ParseCell(bins, RootOffset)
	require.NoError(t, err)
	require.False(t, cell.Free)

	nk, err := format.DecodeNK(cell.Data)
	require.NoError(t, err)
	assert.True(t, nk.IsRoot())
	assert.Equal(t, uint32(3), nk.SubkeyCount)
	assert.Equal(t, uint32(1), nk.ValueCount)

	assert.Zero(t, buf.U32LE(cell.Data[format.NKVolSubkeyCountOffset:]))
	assert.Equal(t, uint32(format.InvalidOffset), buf.U32LE(cell.Data[format.NKVolSubkeyListOffset:]))
	assert.NotEqual(t, nk.SubkeyListOffset, buf.U32LE(cell.Data[format.NKVolSubkeyListOffset:]))
}
