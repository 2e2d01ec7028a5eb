package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const maxKeyWidth = 70

// PickModel lets the user choose one entry from a list of document keys.
type PickModel struct {
	items     []string
	selected  int
	chosen    string
	cancelled bool
	width     int
	height    int
}

func NewPickModel(items []string) PickModel {
	return PickModel{items: items}
}

func (m PickModel) Init() tea.Cmd {
	return nil
}

func (m PickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
			}

		case "enter":
			if len(m.items) > 0 && m.selected < len(m.items) {
				m.chosen = m.items[m.selected]
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m PickModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("wsearch") + " ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d documents", len(m.items))) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("No results found") + "\n")
		b.WriteString("\n" + helpStyle.Render("q quit"))
		return b.String()
	}

	for i, item := range m.visible() {
		idx := i + m.offset()
		if idx == m.selected {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(keyStyle.Render(truncate(item, maxKeyWidth)) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("↑/↓ navigate  enter open  q cancel"))

	return b.String()
}

// Chosen is the selected key, or "" if the user cancelled.
func (m PickModel) Chosen() string {
	return m.chosen
}

// rows is how many items fit on screen; 0 means no size is known yet.
func (m PickModel) rows() int {
	if m.height <= 4 {
		return 0
	}
	return m.height - 4
}

func (m PickModel) offset() int {
	rows := m.rows()
	if rows == 0 || m.selected < rows {
		return 0
	}
	return m.selected - rows + 1
}

func (m PickModel) visible() []string {
	rows := m.rows()
	if rows == 0 {
		return m.items
	}
	start := m.offset()
	end := start + rows
	if end > len(m.items) {
		end = len(m.items)
	}
	return m.items[start:end]
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
