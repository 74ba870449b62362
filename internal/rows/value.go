package rows

import (
	"slices"
	"strings"

	"github.com/joshuapare/regview/internal/reader"
	"github.com/joshuapare/regview/internal/values"
)

// ValueColumn identifies a column of the values table.
type ValueColumn int

const (
	ValueColumnName ValueColumn = iota
	ValueColumnData
	ValueColumnType
)

// ValueColumns lists the value columns in display order.
var ValueColumns = []ValueColumn{ValueColumnName, ValueColumnData, ValueColumnType}

func (c ValueColumn) Title() string {
	switch c {
	case ValueColumnName:
		return "Name"
	case ValueColumnData:
		return "Data"
	default:
		return "Type"
	}
}

// ValueRow is one line of the values table.
type ValueRow struct {
	Name string
	Data string
	Type string
}

// ValueRowFrom decodes v for display.
func ValueRowFrom(v reader.Value) ValueRow {
	label, display := values.Decode(v)
	return ValueRow{Name: v.Name, Data: display, Type: label}
}

// ValueRowsFrom decodes a key's values in stored order.
func ValueRowsFrom(vs []reader.Value) []ValueRow {
	out := make([]ValueRow, 0, len(vs))
	for _, v := range vs {
		out = append(out, ValueRowFrom(v))
	}
	return out
}

func (r ValueRow) Column(c ValueColumn) string {
	switch c {
	case ValueColumnName:
		return r.Name
	case ValueColumnData:
		return r.Data
	default:
		return r.Type
	}
}

func CompareValues(a, b ValueRow, c ValueColumn) int {
	return strings.Compare(a.Column(c), b.Column(c))
}

func SortValues(rows []ValueRow, c ValueColumn, d Direction) {
	slices.SortStableFunc(rows, func(a, b ValueRow) int {
		return d.apply(CompareValues(a, b, c))
	})
}
