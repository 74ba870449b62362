package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regview/internal/browser"
	"github.com/joshuapare/regview/internal/rows"
	"github.com/joshuapare/regview/internal/testutil"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	path := testutil.WriteFile(t, "SOFTWARE", testutil.BuildHive(testutil.WindowsLike()))
	h, err := browser.Open(path, nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	m := NewModel(h)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "ctrl+f":
			msg = tea.KeyMsg{Type: tea.KeyCtrlF}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func currentKey(m Model) string {
	r, _ := m.selectedKey()
	return r.Name
}

func TestModel_InitialListing(t *testing.T) {
	m := newTestModel(t)
	require.Len(t, m.keyRows, 4)
	assert.True(t, m.keyRows[0].IsParent)
	assert.Equal(t, rows.ParentName, currentKey(m))

	// The placeholder at the root shows the root's own values.
	require.Len(t, m.valueRows, 1)
	assert.Equal(t, "RootValue", m.valueRows[0].Name)

	view := m.View()
	assert.Contains(t, view, "regview")
	assert.Contains(t, view, "Software")
	assert.Contains(t, view, `Path: \`)
}

func TestModel_EnterAndLeave(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "down")
	assert.Equal(t, "ControlSet001", currentKey(m), "keys are sorted by name")
	m = press(t, m, "down", "down")
	assert.Equal(t, "Software", currentKey(m))

	m = press(t, m, "enter")
	assert.Equal(t, []string{"Software"}, m.hive.Path())
	assert.Equal(t, rows.ParentName, currentKey(m))
	assert.Empty(t, m.valueRows, "the placeholder below the root has no values")
	assert.Empty(t, m.statusMessage)

	m = press(t, m, "down")
	assert.Equal(t, "Classes", currentKey(m))
	assert.Empty(t, m.valueRows)

	m = press(t, m, "backspace")
	assert.Empty(t, m.hive.Path())
	assert.Equal(t, "Software", currentKey(m), "cursor returns to the key just left")

	// Enter on the placeholder goes up too.
	m = press(t, m, "enter", "enter")
	assert.Empty(t, m.hive.Path())
}

func TestModel_ValuesFollowCursor(t *testing.T) {
	m := newTestModel(t)
	_, err := m.hive.SelectPath([]string{"ControlSet001"})
	require.NoError(t, err)
	m = press(t, m, "esc") // no-op in normal mode
	keys, err := m.hive.SelectPath([]string{"ControlSet001", "Services"})
	require.NoError(t, err)
	m.setKeys(keys, "Tcpip")

	assert.Equal(t, "Tcpip", currentKey(m))
	require.Len(t, m.valueRows, 2)
	assert.Equal(t, "DependOnService", m.valueRows[0].Name)
	assert.Equal(t, "Afd|Nsi|Tdx", m.valueRows[0].Data)
	assert.Equal(t, "0x00000002 (2)", m.valueRows[1].Data)

	m = press(t, m, "tab", "S")
	assert.Equal(t, ValuesPane, m.focusedPane)
	assert.Equal(t, "Start", m.valueRows[0].Name)
}

func TestModel_FindAndJump(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "/")
	require.Equal(t, FindModal, m.modal)
	m = typeText(t, m, "^SecurityHealth$")
	m = press(t, m, "enter")
	require.Equal(t, ResultsModal, m.modal)
	require.Len(t, m.resultRows, 1)
	assert.Equal(t, 0, m.resultsTable.Cursor(), "first result is selected")
	assert.Contains(t, m.View(), "SecurityHealth")

	m = press(t, m, "enter")
	assert.Equal(t, NoModal, m.modal)
	assert.Equal(t, []string{"Software", "Microsoft", "Windows", "CurrentVersion"}, m.hive.Path())
	assert.Equal(t, "Run", currentKey(m))
	assert.Equal(t, ValuesPane, m.focusedPane)
	v, ok := m.selectedValue()
	require.True(t, ok)
	assert.Equal(t, "SecurityHealth", v.Name)
}

func TestModel_FindKeyNameJump(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "ctrl+f")
	m = typeText(t, m, "^Dnscache$")
	m = press(t, m, "enter", "enter")

	assert.Equal(t, []string{"ControlSet001", "Services"}, m.hive.Path())
	assert.Equal(t, "Dnscache", currentKey(m))
	assert.Equal(t, KeysPane, m.focusedPane)
}

func TestModel_RepeatedFindSelectsFirstResult(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "^Run")
	m = press(t, m, "enter")
	require.Equal(t, ResultsModal, m.modal)
	require.Len(t, m.resultRows, 3, "Run, RunOnce and the Services Run key")
	m = press(t, m, "down", "down")
	assert.Equal(t, 2, m.resultsTable.Cursor())

	// A narrower search replaces the rows; the cursor must land on them.
	m = press(t, m, "/")
	require.Equal(t, FindModal, m.modal)
	m.findInput.SetValue("")
	m = typeText(t, m, "^Dnscache$")
	m = press(t, m, "enter")
	require.Equal(t, ResultsModal, m.modal)
	require.Len(t, m.resultRows, 1)
	assert.Equal(t, 0, m.resultsTable.Cursor())

	m = press(t, m, "s")
	assert.Equal(t, 0, m.resultsTable.Cursor(), "sorting keeps a valid cursor")

	m = press(t, m, "enter")
	assert.Equal(t, NoModal, m.modal)
	assert.Equal(t, []string{"ControlSet001", "Services"}, m.hive.Path())
	assert.Equal(t, "Dnscache", currentKey(m))
}

func TestModel_FindErrors(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"[", "invalid pattern"},
		{"^nothing matches this$", "No results found."},
		{".", "Too many results found."},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m := newTestModel(t)
			m = press(t, m, "/")
			m = typeText(t, m, tt.pattern)
			m = press(t, m, "enter")
			require.Equal(t, ErrorModal, m.modal)
			assert.Contains(t, m.errText, tt.want)
			assert.Empty(t, m.hive.Path(), "errors leave the navigator alone")

			m = press(t, m, "esc")
			assert.Equal(t, NoModal, m.modal)
		})
	}
}

func TestModel_FindCancel(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "q")
	assert.Equal(t, FindModal, m.modal, "q is typed, not quit")
	m = press(t, m, "esc")
	assert.Equal(t, NoModal, m.modal)
}

func TestModel_SortKeepsPlaceholderFirst(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "S")
	assert.True(t, m.keyRows[0].IsParent)
	assert.Equal(t, "Software", m.keyRows[1].Name)

	m = press(t, m, "s")
	assert.Equal(t, int(rows.KeyColumnLastWritten), m.keySort.column)
	assert.True(t, m.keyRows[0].IsParent)
}

func TestModel_HelpOverlay(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "?")
	require.Equal(t, HelpModal, m.modal)
	assert.True(t, strings.Contains(m.View(), "find (regex)"))
	m = press(t, m, "?")
	assert.Equal(t, NoModal, m.modal)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
