package rows

import (
	"slices"
	"strings"
	"time"

	"github.com/joshuapare/regview/internal/reader"
)

// ParentName is the label of the synthetic "go up" row.
const ParentName = "[..]"

// TimeLayout formats LastWritten cells.
const TimeLayout = "2006-01-02 15:04:05"

// KeyColumn identifies a column of the keys table.
type KeyColumn int

const (
	KeyColumnNodeType KeyColumn = iota
	KeyColumnName
	KeyColumnLastWritten
)

// KeyColumns lists the key columns in display order.
var KeyColumns = []KeyColumn{KeyColumnNodeType, KeyColumnName, KeyColumnLastWritten}

func (c KeyColumn) Title() string {
	switch c {
	case KeyColumnNodeType:
		return ""
	case KeyColumnName:
		return "Name"
	default:
		return "Last written"
	}
}

// KeyRow is one line of the keys table.
type KeyRow struct {
	Name        string
	IsParent    bool
	IsLeaf      bool
	LastWritten time.Time
}

// ParentRow returns the placeholder row that leads one level up.
func ParentRow() KeyRow {
	return KeyRow{Name: ParentName, IsParent: true}
}

// KeyRowFrom builds a row for a child key.
func KeyRowFrom(n reader.KeyNode) KeyRow {
	return KeyRow{
		Name:        n.Name,
		IsLeaf:      n.SubkeyCount == 0,
		LastWritten: n.LastWritten,
	}
}

// Column renders the cell for c.
func (r KeyRow) Column(c KeyColumn) string {
	switch c {
	case KeyColumnNodeType:
		switch {
		case r.IsLeaf:
			return ""
		case r.IsParent:
			return "⌃"
		default:
			return "⌄"
		}
	case KeyColumnName:
		return r.Name
	default:
		if r.LastWritten.IsZero() {
			return ""
		}
		return r.LastWritten.UTC().Format(TimeLayout)
	}
}

// CompareKeys orders a and b by column c. The placeholder is less than any
// other row.
func CompareKeys(a, b KeyRow, c KeyColumn) int {
	switch {
	case a.IsParent && b.IsParent:
		return 0
	case a.IsParent:
		return -1
	case b.IsParent:
		return 1
	}
	switch c {
	case KeyColumnNodeType:
		// Keys with children before leaves.
		switch {
		case a.IsLeaf == b.IsLeaf:
			return 0
		case b.IsLeaf:
			return -1
		default:
			return 1
		}
	case KeyColumnName:
		return strings.Compare(a.Name, b.Name)
	default:
		return a.LastWritten.Compare(b.LastWritten)
	}
}

// SortKeys sorts rows in place. Direction only applies among regular rows;
// the placeholder stays on top.
func SortKeys(rows []KeyRow, c KeyColumn, d Direction) {
	slices.SortStableFunc(rows, func(a, b KeyRow) int {
		if a.IsParent || b.IsParent {
			return CompareKeys(a, b, c)
		}
		return d.apply(CompareKeys(a, b, c))
	})
}
