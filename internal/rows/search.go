package rows

import (
	"slices"
	"strings"
)

// PathSeparator joins path segments for display. Segments are not escaped.
const PathSeparator = `\`

// SearchColumn identifies a column of the search results table.
type SearchColumn int

const (
	SearchColumnKey SearchColumn = iota
	SearchColumnValueName
	SearchColumnValueData
)

// SearchColumns lists the search columns in display order.
var SearchColumns = []SearchColumn{SearchColumnKey, SearchColumnValueName, SearchColumnValueData}

func (c SearchColumn) Title() string {
	switch c {
	case SearchColumnKey:
		return "Key"
	case SearchColumnValueName:
		return "Value"
	default:
		return "Data"
	}
}

// SearchRow is a flattened search result. The Has flags distinguish an
// absent field from an empty one (the default value has an empty name).
type SearchRow struct {
	Path         []string
	ValueName    string
	HasValueName bool
	ValueData    string
	HasValueData bool
}

// JoinPath renders a path for display.
func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

func (r SearchRow) Column(c SearchColumn) string {
	switch c {
	case SearchColumnKey:
		return JoinPath(r.Path)
	case SearchColumnValueName:
		return r.ValueName
	default:
		return r.ValueData
	}
}

// CompareSearch orders rows lexicographically by the display text of column
// c. A missing field compares as the empty string.
func CompareSearch(a, b SearchRow, c SearchColumn) int {
	return strings.Compare(a.Column(c), b.Column(c))
}

func SortSearch(rows []SearchRow, c SearchColumn, d Direction) {
	slices.SortStableFunc(rows, func(a, b SearchRow) int {
		return d.apply(CompareSearch(a, b, c))
	})
}
