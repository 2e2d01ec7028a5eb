package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel asks for a single line of free text.
type PromptModel struct {
	input     textinput.Model
	title     string
	submitted bool
	cancelled bool
}

func NewPromptModel(title, placeholder string) PromptModel {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Focus()
	input.Width = 60

	return PromptModel{
		input: input,
		title: title,
	}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PromptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	b.WriteString(inputBoxStyle.Render(m.input.View()) + "\n")
	b.WriteString("\n" + helpStyle.Render("enter search  esc cancel"))
	return b.String()
}

// Value is the entered text, or "" if the prompt was cancelled. The text
// is returned as typed, with no trimming or validation.
func (m PromptModel) Value() string {
	if m.cancelled {
		return ""
	}
	return m.input.Value()
}

func (m PromptModel) Cancelled() bool {
	return m.cancelled
}
