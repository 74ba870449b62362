package main

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/regview/internal/browser"
	"github.com/joshuapare/regview/internal/logger"
	"github.com/joshuapare/regview/internal/rows"
	"github.com/joshuapare/regview/pkg/types"
)

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch m.modal {
		case HelpModal:
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
				m.modal = NoModal
			}
			return m, nil
		case ErrorModal:
			if key.Matches(msg, m.keys.Esc) || msg.Type == tea.KeyEnter {
				m.modal = NoModal
				m.errText = ""
			}
			return m, nil
		case FindModal:
			return m.updateFind(msg)
		case ResultsModal:
			return m.updateResults(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.modal = HelpModal
		return m, nil
	case key.Matches(msg, m.keys.Find):
		m.modal = FindModal
		m.findInput.SetValue(m.lastPattern)
		m.findInput.CursorEnd()
		return m, m.findInput.Focus()
	case key.Matches(msg, m.keys.Tab):
		if m.focusedPane == KeysPane {
			m.focus(ValuesPane)
		} else {
			m.focus(KeysPane)
		}
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()
		return m, nil
	case key.Matches(msg, m.keys.Reverse):
		m.reverseSort()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.copyPath()
		return m, nil
	case key.Matches(msg, m.keys.CopyValue):
		m.copyValue()
		return m, nil
	}

	if m.focusedPane == ValuesPane {
		var cmd tea.Cmd
		m.valuesTable, cmd = m.valuesTable.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		m.openSelected()
		return m, nil
	case key.Matches(msg, m.keys.Leave):
		m.leave()
		return m, nil
	}
	before := m.keysTable.Cursor()
	var cmd tea.Cmd
	m.keysTable, cmd = m.keysTable.Update(msg)
	if m.keysTable.Cursor() != before {
		m.refreshValues()
	}
	return m, cmd
}

func (m Model) updateFind(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = NoModal
		m.findInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.findInput.Blur()
		m.runFind(m.findInput.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.findInput, cmd = m.findInput.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Esc):
		m.modal = NoModal
		return m, nil
	case msg.Type == tea.KeyEnter:
		if i := m.resultsTable.Cursor(); i >= 0 && i < len(m.resultRows) {
			m.jump(m.resultRows[i])
		}
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.resultSort.column = (m.resultSort.column + 1) % len(rows.SearchColumns)
		m.setResults(m.resultRows)
		return m, nil
	case key.Matches(msg, m.keys.Reverse):
		m.resultSort.dir = m.resultSort.dir.Toggle()
		m.setResults(m.resultRows)
		return m, nil
	case key.Matches(msg, m.keys.Find):
		m.modal = FindModal
		return m, m.findInput.Focus()
	}
	var cmd tea.Cmd
	m.resultsTable, cmd = m.resultsTable.Update(msg)
	return m, cmd
}

// runFind searches the whole hive. Failures, including an empty result,
// are shown in the error dialog.
func (m *Model) runFind(pattern string) {
	m.lastPattern = pattern
	results, err := m.hive.FindRegex(pattern)
	if err != nil {
		logger.Debug("find failed", "pattern", pattern, "error", err)
		m.showError(err)
		return
	}
	m.setResults(browser.Rows(results))
	m.resultsTable.SetCursor(0)
	m.modal = ResultsModal
}

// jump moves the browser to a search hit: the parent listing with the key
// under the cursor and, for value hits, the value selected.
func (m *Model) jump(row rows.SearchRow) {
	t := browser.TargetOfRow(row)
	keys, err := m.hive.SelectPath(t.Parent)
	if err != nil {
		m.showError(err)
		return
	}
	m.modal = NoModal
	m.setKeys(keys, t.Key)
	if t.HasValue {
		m.selectValue(t.Value)
		m.focus(ValuesPane)
		return
	}
	m.focus(KeysPane)
}

func (m *Model) openSelected() {
	row, ok := m.selectedKey()
	if !ok {
		return
	}
	if row.IsParent {
		m.leave()
		return
	}
	keys, err := m.hive.Enter(row.Name)
	if err != nil {
		m.showError(err)
		return
	}
	m.setKeys(keys, "")
}

// leave goes up one level and puts the cursor on the key just left.
func (m *Model) leave() {
	from, _ := m.hive.SelectedNode()
	keys, err := m.hive.Leave()
	if err != nil {
		m.showError(err)
		return
	}
	m.setKeys(keys, from)
}

func (m *Model) focus(p Pane) {
	m.focusedPane = p
	if p == KeysPane {
		m.keysTable.Focus()
		m.valuesTable.Blur()
	} else {
		m.valuesTable.Focus()
		m.keysTable.Blur()
	}
	m.keysTable.SetStyles(tableStyles(p == KeysPane))
	m.valuesTable.SetStyles(tableStyles(p == ValuesPane))
}

func (m *Model) selectedKey() (rows.KeyRow, bool) {
	i := m.keysTable.Cursor()
	if i < 0 || i >= len(m.keyRows) {
		return rows.KeyRow{}, false
	}
	return m.keyRows[i], true
}

func (m *Model) selectedValue() (rows.ValueRow, bool) {
	i := m.valuesTable.Cursor()
	if i < 0 || i >= len(m.valueRows) {
		return rows.ValueRow{}, false
	}
	return m.valueRows[i], true
}

// setKeys replaces the keys listing, keeping the cursor on cursorName when
// it is present, and reloads the values pane.
func (m *Model) setKeys(keys []rows.KeyRow, cursorName string) {
	m.keyRows = keys
	rows.SortKeys(m.keyRows, rows.KeyColumn(m.keySort.column), m.keySort.dir)
	out := make([]table.Row, 0, len(m.keyRows))
	cursor := 0
	for i, r := range m.keyRows {
		out = append(out, table.Row{
			r.Column(rows.KeyColumnNodeType),
			r.Column(rows.KeyColumnName),
			r.Column(rows.KeyColumnLastWritten),
		})
		if cursorName != "" && !r.IsParent && r.Name == cursorName {
			cursor = i
		}
	}
	m.keysTable.SetRows(out)
	m.keysTable.SetCursor(cursor)
	m.layout()
	m.refreshValues()
}

// refreshValues loads the values of the key under the cursor.
func (m *Model) refreshValues() {
	row, ok := m.selectedKey()
	if !ok {
		m.setValues(nil, "")
		return
	}
	vals, err := m.hive.KeyValues(row.Name)
	if err != nil {
		m.setValues(nil, "")
		m.statusMessage = err.Error()
		return
	}
	m.setValues(vals, "")
}

func (m *Model) setValues(vals []rows.ValueRow, cursorName string) {
	m.valueRows = vals
	rows.SortValues(m.valueRows, rows.ValueColumn(m.valueSort.column), m.valueSort.dir)
	out := make([]table.Row, 0, len(m.valueRows))
	cursor := 0
	for i, r := range m.valueRows {
		name := r.Name
		if name == "" {
			name = "(Default)"
		}
		out = append(out, table.Row{name, r.Data, r.Type})
		if r.Name == cursorName {
			cursor = i
		}
	}
	m.valuesTable.SetRows(out)
	m.valuesTable.SetCursor(cursor)
	m.layout()
}

func (m *Model) selectValue(name string) {
	for i, r := range m.valueRows {
		if r.Name == name {
			m.valuesTable.SetCursor(i)
			return
		}
	}
}

func (m *Model) setResults(rs []rows.SearchRow) {
	m.resultRows = rs
	rows.SortSearch(m.resultRows, rows.SearchColumn(m.resultSort.column), m.resultSort.dir)
	out := make([]table.Row, 0, len(m.resultRows))
	for _, r := range m.resultRows {
		out = append(out, table.Row{
			r.Column(rows.SearchColumnKey),
			r.Column(rows.SearchColumnValueName),
			r.Column(rows.SearchColumnValueData),
		})
	}
	m.resultsTable.SetRows(out)
	if c := m.resultsTable.Cursor(); c < 0 || c >= len(out) {
		m.resultsTable.SetCursor(0)
	}
	m.layout()
}

// cycleSort moves the focused table's sort to its next column.
func (m *Model) cycleSort() {
	if m.focusedPane == KeysPane {
		m.keySort.column = (m.keySort.column + 1) % len(rows.KeyColumns)
		m.resortKeys()
		return
	}
	m.valueSort.column = (m.valueSort.column + 1) % len(rows.ValueColumns)
	m.resortValues()
}

func (m *Model) reverseSort() {
	if m.focusedPane == KeysPane {
		m.keySort.dir = m.keySort.dir.Toggle()
		m.resortKeys()
		return
	}
	m.valueSort.dir = m.valueSort.dir.Toggle()
	m.resortValues()
}

func (m *Model) resortKeys() {
	name := ""
	if r, ok := m.selectedKey(); ok && !r.IsParent {
		name = r.Name
	}
	m.setKeys(m.keyRows, name)
}

func (m *Model) resortValues() {
	name := ""
	if r, ok := m.selectedValue(); ok {
		name = r.Name
	}
	m.setValues(m.valueRows, name)
}

// selectedPath is the full path of the key under the cursor.
func (m *Model) selectedPath() []string {
	p := m.hive.Path()
	if r, ok := m.selectedKey(); ok && !r.IsParent {
		p = append(p, r.Name)
	}
	return p
}

func (m *Model) copyPath() {
	p := rows.JoinPath(m.selectedPath())
	if err := clipboard.WriteAll(p); err != nil {
		m.statusMessage = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMessage = "Path copied to clipboard"
}

func (m *Model) copyValue() {
	v, ok := m.selectedValue()
	if !ok {
		m.statusMessage = "No value selected"
		return
	}
	if err := clipboard.WriteAll(v.Data); err != nil {
		m.statusMessage = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMessage = "Value copied to clipboard"
}

func (m *Model) showError(err error) {
	m.errText = describeError(err)
	m.modal = ErrorModal
}

// describeError phrases navigator and search failures for the error dialog.
func describeError(err error) string {
	switch {
	case errors.Is(err, types.ErrNoResult):
		return "No results found."
	case errors.Is(err, types.ErrTooManyResults):
		return "Too many results found. Try a more specific pattern."
	case errors.Is(err, types.ErrInvalidPattern):
		return err.Error()
	case errors.Is(err, types.ErrInvalidPath):
		return "That key no longer exists: " + err.Error()
	default:
		return err.Error()
	}
}
