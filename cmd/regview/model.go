package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/regview/internal/browser"
	"github.com/joshuapare/regview/internal/rows"
)

// Navigator is the part of browser.RegistryHive the UI drives.
type Navigator interface {
	Path() []string
	CurrentKeys() ([]rows.KeyRow, error)
	Enter(name string) ([]rows.KeyRow, error)
	Leave() ([]rows.KeyRow, error)
	SelectPath(path []string) ([]rows.KeyRow, error)
	SelectedNode() (string, bool)
	KeyValues(name string) ([]rows.ValueRow, error)
	FindRegex(pattern string) ([]browser.SearchResult, error)
	Info() browser.Info
}

// Pane represents which pane is focused
type Pane int

const (
	KeysPane Pane = iota
	ValuesPane
)

// Modal is the dialog drawn over the panes, if any.
type Modal int

const (
	NoModal Modal = iota
	FindModal
	ResultsModal
	ErrorModal
	HelpModal
)

// Layout constants
const (
	headerHeight  = 2
	statusHeight  = 1
	paneChrome    = 3 // border plus title line
	minPaneHeight = 5
	glyphWidth    = 2
	timeWidth     = 19
	typeWidth     = 28
)

type sortState struct {
	column int
	dir    rows.Direction
}

// Model is the main application model
type Model struct {
	hive Navigator
	keys KeyMap

	keyRows     []rows.KeyRow
	valueRows   []rows.ValueRow
	keysTable   table.Model
	valuesTable table.Model
	keySort     sortState
	valueSort   sortState

	focusedPane Pane
	modal       Modal
	width       int
	height      int

	findInput    textinput.Model
	lastPattern  string
	resultRows   []rows.SearchRow
	resultsTable table.Model
	resultSort   sortState

	errText string
	help    help.Model

	// Status message for temporary feedback
	statusMessage string
}

// NewModel creates the UI around an opened hive and loads the root listing.
func NewModel(h Navigator) Model {
	ti := textinput.New()
	ti.Prompt = "regex: "
	ti.PromptStyle = searchPromptStyle
	ti.Placeholder = `e.g. ^Run$ or (?i)currentversion`
	ti.CharLimit = 512
	ti.Width = 48

	m := Model{
		hive:         h,
		keys:         DefaultKeyMap(),
		keysTable:    table.New(table.WithFocused(true)),
		valuesTable:  table.New(),
		resultsTable: table.New(table.WithFocused(true)),
		keySort:      sortState{column: int(rows.KeyColumnName), dir: rows.Ascending},
		valueSort:    sortState{column: int(rows.ValueColumnName), dir: rows.Ascending},
		resultSort:   sortState{column: int(rows.SearchColumnKey), dir: rows.Ascending},
		findInput:    ti,
		help:         help.New(),
		width:        100,
		height:       30,
	}
	m.help.ShowAll = true
	m.keysTable.SetStyles(tableStyles(true))
	m.valuesTable.SetStyles(tableStyles(false))
	m.resultsTable.SetStyles(tableStyles(true))
	m.layout()

	keys, err := h.CurrentKeys()
	if err != nil {
		m.showError(err)
		return m
	}
	m.setKeys(keys, "")
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}
