package rows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/pkg/types"
)

func sampleKeys() []KeyRow {
	t1 := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	t2 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	return []KeyRow{
		{Name: "Software", LastWritten: t1},
		{Name: "Empty", IsLeaf: true},
		ParentRow(),
		{Name: "ControlSet001", LastWritten: t2},
		{Name: "Alpha", IsLeaf: true, LastWritten: t2},
	}
}

func TestKeyRow_Columns(t *testing.T) {
	p := ParentRow()
	assert.Equal(t, "[..]", p.Column(KeyColumnName))
	assert.Equal(t, "⌃", p.Column(KeyColumnNodeType))
	assert.Equal(t, "", p.Column(KeyColumnLastWritten))

	branch := KeyRow{Name: "Software", LastWritten: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)}
	assert.Equal(t, "⌄", branch.Column(KeyColumnNodeType))
	assert.Equal(t, "2021-03-04 05:06:07", branch.Column(KeyColumnLastWritten))

	leaf := KeyRow{Name: "Run", IsLeaf: true}
	assert.Equal(t, "", leaf.Column(KeyColumnNodeType))
	assert.Equal(t, "", leaf.Column(KeyColumnLastWritten))
}

func TestKeyRowFrom(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	r := KeyRowFrom(reader.KeyNode{Name: "Services", SubkeyCount: 3, LastWritten: ts})
	assert.Equal(t, KeyRow{Name: "Services", LastWritten: ts}, r)

	leaf := KeyRowFrom(reader.KeyNode{Name: "Tcpip"})
	assert.True(t, leaf.IsLeaf)
	assert.False(t, leaf.IsParent)
}

func TestSortKeys_PlaceholderPinned(t *testing.T) {
	for _, col := range KeyColumns {
		for _, dir := range []Direction{Ascending, Descending} {
			rows := sampleKeys()
			SortKeys(rows, col, dir)
			require.True(t, rows[0].IsParent, "column %v %v", col, dir)
			for _, r := range rows[1:] {
				assert.False(t, r.IsParent)
				assert.Less(t, CompareKeys(rows[0], r, col), 0)
				assert.Greater(t, CompareKeys(r, rows[0], col), 0)
			}
		}
	}
}

func TestSortKeys_Order(t *testing.T) {
	names := func(rows []KeyRow) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.Name)
		}
		return out
	}

	rows := sampleKeys()
	SortKeys(rows, KeyColumnName, Ascending)
	assert.Equal(t, []string{"[..]", "Alpha", "ControlSet001", "Empty", "Software"}, names(rows))

	SortKeys(rows, KeyColumnName, Descending)
	assert.Equal(t, []string{"[..]", "Software", "Empty", "ControlSet001", "Alpha"}, names(rows))

	// Zero timestamps sort first among regular rows.
	rows = sampleKeys()
	SortKeys(rows, KeyColumnLastWritten, Ascending)
	assert.Equal(t, "[..]", rows[0].Name)
	assert.Equal(t, "Empty", rows[1].Name)
	assert.Equal(t, "Software", rows[4].Name)

	rows = sampleKeys()
	SortKeys(rows, KeyColumnNodeType, Ascending)
	assert.False(t, rows[1].IsLeaf)
	assert.False(t, rows[2].IsLeaf)
	assert.True(t, rows[3].IsLeaf)
	assert.True(t, rows[4].IsLeaf)
}

func TestValueRows(t *testing.T) {
	vs := []reader.Value{
		{Name: "Start", Type: types.REG_DWORD, Data: reader.DWord(2)},
		{Name: "", Type: types.REG_SZ, Data: reader.SZ("default")},
		{Name: "Deps", Type: types.REG_MULTI_SZ, Data: reader.MultiSZ{"Tdx", "Afd"}},
	}
	rows := ValueRowsFrom(vs)
	require.Len(t, rows, 3)
	assert.Equal(t, ValueRow{Name: "Start", Data: "0x00000002 (2)", Type: "RegDWord"}, rows[0])
	assert.Equal(t, "Tdx|Afd", rows[2].Column(ValueColumnData))

	SortValues(rows, ValueColumnName, Ascending)
	assert.Equal(t, []string{"", "Deps", "Start"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

	SortValues(rows, ValueColumnType, Descending)
	assert.Equal(t, "RegSZ", rows[0].Type)
	assert.Equal(t, "RegDWord", rows[2].Type)
}

func TestSearchRows(t *testing.T) {
	a := SearchRow{Path: []string{"Software", "Run"}}
	b := SearchRow{Path: []string{"Software"}, ValueName: "", HasValueName: true}
	c := SearchRow{Path: []string{"ControlSet001", "Services"}, ValueName: "Start", HasValueName: true,
		ValueData: "0x00000002", HasValueData: true}

	assert.Equal(t, `Software\Run`, a.Column(SearchColumnKey))
	assert.Equal(t, "", a.Column(SearchColumnValueName))
	assert.Equal(t, "0x00000002", c.Column(SearchColumnValueData))

	// A missing value name compares like the empty default value name.
	assert.Zero(t, CompareSearch(a, b, SearchColumnValueName))
	assert.Less(t, CompareSearch(b, c, SearchColumnValueName), 0)
	// Prefix paths sort first.
	assert.Less(t, CompareSearch(b, a, SearchColumnKey), 0)

	// Paths order by their joined display text, so a space (0x20) sorts
	// before the separator (0x5C) even though "A" is a shorter segment.
	spaced := SearchRow{Path: []string{"A b"}}
	nested := SearchRow{Path: []string{"A", "b"}}
	assert.Less(t, CompareSearch(spaced, nested, SearchColumnKey), 0)
	ordered := []SearchRow{nested, spaced}
	SortSearch(ordered, SearchColumnKey, Ascending)
	assert.Equal(t, []string{"A b"}, ordered[0].Path)

	rows := []SearchRow{a, b, c}
	SortSearch(rows, SearchColumnKey, Ascending)
	assert.Equal(t, []string{"ControlSet001", "Services"}, rows[0].Path)
	assert.Equal(t, []string{"Software"}, rows[1].Path)

	SortSearch(rows, SearchColumnKey, Descending)
	assert.Equal(t, []string{"Software", "Run"}, rows[0].Path)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Descending, Ascending.Toggle())
	assert.Equal(t, Ascending, Descending.Toggle())
	assert.Equal(t, "asc", Ascending.String())
	assert.NotEqual(t, Ascending.Arrow(), Descending.Arrow())
}
