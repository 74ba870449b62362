// Package rows turns navigator entities into table rows. Every row type
// renders a string per column and orders itself per column; the key listing's
// parent placeholder sorts first under every column and direction.
package rows

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Arrow is a header marker for the sorted column.
func (d Direction) Arrow() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}

// apply orients an ascending comparison result by d.
func (d Direction) apply(c int) int {
	if d == Descending {
		return -c
	}
	return c
}
