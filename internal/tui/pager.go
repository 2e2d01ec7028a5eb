package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const pagerChrome = 3

// PagerModel shows a named, scrollable block of text until dismissed.
type PagerModel struct {
	name     string
	content  string
	viewport viewport.Model
}

func NewPagerModel(name, content string) PagerModel {
	vp := viewport.New(80, 20)
	vp.SetContent(content)
	return PagerModel{
		name:     name,
		content:  content,
		viewport: vp,
	}
}

func (m PagerModel) Init() tea.Cmd {
	return nil
}

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - pagerChrome
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.viewport.SetContent(m.content)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PagerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.name) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll  q close"))
	return b.String()
}
