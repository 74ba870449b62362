package browser

import (
	"slices"

	"github.com/joshuapare/regview/internal/rows"
)

// SearchResult is one match. The set of implementations is closed: KeyName,
// ValueName, ValueData and ValueNameAndData.
type SearchResult interface {
	// KeyPath is the path of the matching key, or of the key holding the
	// matching value.
	KeyPath() []string
	Row() rows.SearchRow
	searchResult()
}

// KeyName is a key whose own name matched. Path ends with that name.
type KeyName struct {
	Path []string
}

// ValueName is a value whose name matched.
type ValueName struct {
	Path      []string
	ValueName string
}

// ValueData is a value whose data matched. Data is the matched text
// projection of the payload.
type ValueData struct {
	Path      []string
	ValueName string
	Data      string
}

// ValueNameAndData is a value whose name and data both matched.
type ValueNameAndData struct {
	Path      []string
	ValueName string
	Data      string
}

func (KeyName) searchResult()          {}
func (ValueName) searchResult()        {}
func (ValueData) searchResult()        {}
func (ValueNameAndData) searchResult() {}

func (r KeyName) KeyPath() []string          { return slices.Clone(r.Path) }
func (r ValueName) KeyPath() []string        { return slices.Clone(r.Path) }
func (r ValueData) KeyPath() []string        { return slices.Clone(r.Path) }
func (r ValueNameAndData) KeyPath() []string { return slices.Clone(r.Path) }

func (r KeyName) Row() rows.SearchRow {
	return rows.SearchRow{Path: slices.Clone(r.Path)}
}

func (r ValueName) Row() rows.SearchRow {
	return rows.SearchRow{Path: slices.Clone(r.Path), ValueName: r.ValueName, HasValueName: true}
}

func (r ValueData) Row() rows.SearchRow {
	return rows.SearchRow{Path: slices.Clone(r.Path), ValueName: r.ValueName, HasValueName: true,
		ValueData: r.Data, HasValueData: true}
}

func (r ValueNameAndData) Row() rows.SearchRow {
	return rows.SearchRow{Path: slices.Clone(r.Path), ValueName: r.ValueName, HasValueName: true,
		ValueData: r.Data, HasValueData: true}
}

// Target is where the browser lands for a result: the listing of Parent
// with Key under the cursor and, for value hits, Value highlighted.
type Target struct {
	Parent   []string
	Key      string
	Value    string
	HasValue bool
}

// TargetOf maps a result to its jump target. A hit on the root key itself
// lands on the root listing with no key selected.
func TargetOf(r SearchResult) Target {
	return TargetOfRow(r.Row())
}

// TargetOfRow is TargetOf for a flattened result.
func TargetOfRow(row rows.SearchRow) Target {
	var t Target
	if n := len(row.Path); n > 0 {
		t.Parent, t.Key = slices.Clone(row.Path[:n-1]), row.Path[n-1]
	}
	t.Value, t.HasValue = row.ValueName, row.HasValueName
	return t
}

// Rows flattens results for the search table.
func Rows(results []SearchResult) []rows.SearchRow {
	out := make([]rows.SearchRow, 0, len(results))
	for _, r := range results {
		out = append(out, r.Row())
	}
	return out
}
