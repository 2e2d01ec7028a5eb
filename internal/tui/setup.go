package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type SetupModel struct {
	apiKeyInput textinput.Model
	urlInput    textinput.Model
	focus       int
	error       string
	width       int
	height      int
}

func NewSetupModel() SetupModel {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your search service API key here..."
	apiKey.Focus()
	apiKey.Width = 60
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'

	urlInput := textinput.New()
	urlInput.Placeholder = "https://api.us-south.discovery.watson.cloud.ibm.com/instances/..."
	urlInput.Width = 60

	return SetupModel{
		apiKeyInput: apiKey,
		urlInput:    urlInput,
		focus:       0,
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab", "down", "shift+tab", "up":
			m = m.toggleFocus()
			return m, nil

		case "enter":
			apiKey := strings.TrimSpace(m.apiKeyInput.Value())
			serviceURL := strings.TrimSpace(m.urlInput.Value())

			if apiKey == "" {
				m.error = "API key is required"
				return m, nil
			}
			if serviceURL == "" {
				m.error = "Service URL is required"
				return m, nil
			}

			return m, func() tea.Msg {
				return SetupSubmitMsg{
					APIKey:     apiKey,
					ServiceURL: serviceURL,
				}
			}
		}

		if m.focus == 0 {
			m.apiKeyInput, cmd = m.apiKeyInput.Update(msg)
		} else {
			m.urlInput, cmd = m.urlInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SetupErrorMsg:
		m.error = msg.Error

	default:
		if m.focus == 0 {
			m.apiKeyInput, cmd = m.apiKeyInput.Update(msg)
		} else {
			m.urlInput, cmd = m.urlInput.Update(msg)
		}
	}

	return m, cmd
}

// toggleFocus moves focus to the other field; there are only two.
func (m SetupModel) toggleFocus() SetupModel {
	if m.focus == 0 {
		m.focus = 1
		m.apiKeyInput.Blur()
		m.urlInput.Focus()
	} else {
		m.focus = 0
		m.urlInput.Blur()
		m.apiKeyInput.Focus()
	}
	return m
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wsearch - Setup") + "\n\n")
	b.WriteString("wsearch needs the credentials of your knowledge-base search service.\n\n")
	b.WriteString("1. Open the service instance in your cloud dashboard\n")
	b.WriteString("2. Copy the API key and the service URL from its credentials page\n")
	b.WriteString("3. Paste them below\n\n")

	apiKeyLabel := "API Key:"
	if m.focus == 0 {
		apiKeyLabel = activeStyle.Render("> " + apiKeyLabel)
	} else {
		apiKeyLabel = "  " + apiKeyLabel
	}
	b.WriteString(apiKeyLabel + "\n")
	b.WriteString(inputBoxStyle.Render(m.apiKeyInput.View()) + "\n\n")

	urlLabel := "Service URL:"
	if m.focus == 1 {
		urlLabel = activeStyle.Render("> " + urlLabel)
	} else {
		urlLabel = "  " + urlLabel
	}
	b.WriteString(urlLabel + "\n")
	b.WriteString(inputBoxStyle.Render(m.urlInput.View()) + "\n")

	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.error) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab switch field  enter submit  ctrl+c quit"))

	return b.String()
}
