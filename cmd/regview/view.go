package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/regview/internal/rows"
)

// layer adapts pre-rendered text to tea.Model so it can take part in an
// overlay.
type layer struct{ content string }

func (l layer) Init() tea.Cmd                       { return nil }
func (l layer) Update(tea.Msg) (tea.Model, tea.Cmd) { return l, nil }
func (l layer) View() string                        { return l.content }

// View renders the entire UI
func (m Model) View() string {
	base := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderPanes(),
		m.renderStatus(),
	)
	if m.modal == NoModal {
		return base
	}
	return overlay.New(
		layer{m.renderModal()},
		layer{base},
		overlay.Center,
		overlay.Center,
		0,
		0,
	).View()
}

// renderHeader renders the hive summary and the current path
func (m Model) renderHeader() string {
	info := m.hive.Info()
	parts := []string{filepath.Base(info.Path), humanize.Bytes(uint64(info.Size))}
	if !info.LastWrite.IsZero() {
		parts = append(parts, "written "+humanize.Time(info.LastWrite))
	}
	if info.LogsAttached > 0 {
		parts = append(parts, fmt.Sprintf("%d log entries applied", info.LogsApplied))
	}
	if !info.BaseBlockValid {
		parts = append(parts, "base block ignored")
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("regview"),
		"  ",
		headerInfoStyle.Render(strings.Join(parts, " · ")),
	)
	path := pathStyle.Render(`Path: \` + rows.JoinPath(m.hive.Path()))
	return lipgloss.JoinVertical(lipgloss.Left, title, path)
}

func (m Model) renderPanes() string {
	keysStyle, valuesStyle := paneStyle, paneStyle
	if m.focusedPane == KeysPane {
		keysStyle = activePaneStyle
	} else {
		valuesStyle = activePaneStyle
	}
	keys := keysStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		paneTitleStyle.Render(fmt.Sprintf("Keys (%d)", max(len(m.keyRows)-1, 0))),
		m.keysTable.View(),
	))
	values := valuesStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		paneTitleStyle.Render(fmt.Sprintf("Values (%d)", len(m.valueRows))),
		m.valuesTable.View(),
	))
	return lipgloss.JoinHorizontal(lipgloss.Top, keys, values)
}

func (m Model) renderStatus() string {
	line := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.statusMessage != "" {
		line = statusMessageStyle.Render(m.statusMessage) + "  " + line
	}
	return statusStyle.Render(line)
}

func (m Model) renderModal() string {
	switch m.modal {
	case FindModal:
		return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			modalTitleStyle.Render("Find"),
			m.findInput.View(),
			hintStyle.Render("enter: search · esc: cancel"),
		))
	case ResultsModal:
		return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			modalTitleStyle.Render(fmt.Sprintf("%d results for %q", len(m.resultRows), m.lastPattern)),
			m.resultsTable.View(),
			hintStyle.Render("enter: go to · s/S: sort · /: new search · esc: close"),
		))
	case ErrorModal:
		return errorModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			errorTitleStyle.Render("Error"),
			m.errText,
			hintStyle.Render("enter/esc: close"),
		))
	case HelpModal:
		return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			modalTitleStyle.Render("Keys"),
			m.help.View(m.keys),
			hintStyle.Render("esc: close"),
		))
	default:
		return ""
	}
}

// layout sizes every table to the current window.
func (m *Model) layout() {
	paneHeight := max(m.height-headerHeight-statusHeight-paneChrome, minPaneHeight)
	keysWidth := max(m.width*2/5, 30)
	valuesWidth := max(m.width-keysWidth, 40)

	// Each cell carries one column of padding on both sides; the pane border
	// takes two more.
	inner := keysWidth - 2
	nameWidth := max(inner-(glyphWidth+2)-(timeWidth+2)-2, 8)
	m.keysTable.SetColumns([]table.Column{
		{Title: m.sortTitle(rows.KeyColumnNodeType.Title(), m.keySort, int(rows.KeyColumnNodeType)), Width: glyphWidth},
		{Title: m.sortTitle(rows.KeyColumnName.Title(), m.keySort, int(rows.KeyColumnName)), Width: nameWidth},
		{Title: m.sortTitle(rows.KeyColumnLastWritten.Title(), m.keySort, int(rows.KeyColumnLastWritten)), Width: timeWidth},
	})
	m.keysTable.SetHeight(paneHeight)
	m.keysTable.SetWidth(inner)

	inner = valuesWidth - 2
	valueNameWidth := max(inner/4, 10)
	dataWidth := max(inner-valueNameWidth-typeWidth-6, 10)
	m.valuesTable.SetColumns([]table.Column{
		{Title: m.sortTitle(rows.ValueColumnName.Title(), m.valueSort, int(rows.ValueColumnName)), Width: valueNameWidth},
		{Title: m.sortTitle(rows.ValueColumnData.Title(), m.valueSort, int(rows.ValueColumnData)), Width: dataWidth},
		{Title: m.sortTitle(rows.ValueColumnType.Title(), m.valueSort, int(rows.ValueColumnType)), Width: typeWidth},
	})
	m.valuesTable.SetHeight(paneHeight)
	m.valuesTable.SetWidth(inner)

	modalWidth := max(m.width-16, 40)
	keyWidth := modalWidth / 2
	rest := max(modalWidth-keyWidth-6, 20)
	m.resultsTable.SetColumns([]table.Column{
		{Title: m.sortTitle(rows.SearchColumnKey.Title(), m.resultSort, int(rows.SearchColumnKey)), Width: keyWidth},
		{Title: m.sortTitle(rows.SearchColumnValueName.Title(), m.resultSort, int(rows.SearchColumnValueName)), Width: rest / 3},
		{Title: m.sortTitle(rows.SearchColumnValueData.Title(), m.resultSort, int(rows.SearchColumnValueData)), Width: rest - rest/3},
	})
	m.resultsTable.SetHeight(max(m.height-14, minPaneHeight))
	m.resultsTable.SetWidth(modalWidth)
	m.findInput.Width = max(modalWidth/2, 20)
}

func (m *Model) sortTitle(title string, s sortState, column int) string {
	if s.column != column {
		return title
	}
	return title + s.dir.Arrow()
}
