package tui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short.md", 20, "short.md"},
		{"  padded  ", 20, "padded"},
		{"line\nbreak", 20, "line break"},
		{"a-very-long-document-name.md", 10, "a-very-..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPickModel_EnterChoosesSelected(t *testing.T) {
	var m tea.Model = NewPickModel([]string{"a.md", "b.md", "c.md"})

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("j"))
	m, cmd := m.Update(key("enter"))

	if !isQuit(cmd) {
		t.Fatal("expected enter to quit the picker")
	}
	if got := m.(PickModel).Chosen(); got != "c.md" {
		t.Errorf("expected c.md, got %q", got)
	}
}

func TestPickModel_NavigationClamps(t *testing.T) {
	var m tea.Model = NewPickModel([]string{"a.md", "b.md"})

	m, _ = m.Update(key("up"))
	m, _ = m.Update(key("k"))
	if got := m.(PickModel).selected; got != 0 {
		t.Errorf("expected selection to stay at 0, got %d", got)
	}

	for i := 0; i < 5; i++ {
		m, _ = m.Update(key("down"))
	}
	if got := m.(PickModel).selected; got != 1 {
		t.Errorf("expected selection to stop at 1, got %d", got)
	}
}

func TestPickModel_CancelChoosesNothing(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		var m tea.Model = NewPickModel([]string{"a.md"})
		m, cmd := m.Update(key(k))

		if !isQuit(cmd) {
			t.Errorf("%s: expected quit", k)
		}
		if got := m.(PickModel).Chosen(); got != "" {
			t.Errorf("%s: expected no choice, got %q", k, got)
		}
	}
}

func TestPickModel_EnterOnEmptyList(t *testing.T) {
	var m tea.Model = NewPickModel(nil)
	m, cmd := m.Update(key("enter"))

	if isQuit(cmd) {
		t.Error("expected enter on an empty list to be ignored")
	}
	if !strings.Contains(m.View(), "No results found") {
		t.Errorf("expected empty-list notice, got %q", m.View())
	}
}

func TestPickModel_ScrollsWithSelection(t *testing.T) {
	items := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	var m tea.Model = NewPickModel(items)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})

	for i := 0; i < 6; i++ {
		m, _ = m.Update(key("down"))
	}

	pm := m.(PickModel)
	visible := pm.visible()
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible rows, got %d", len(visible))
	}
	if visible[len(visible)-1] != "6" {
		t.Errorf("expected selected item to be the last visible row, got %v", visible)
	}
}

func TestPromptModel_SubmitReturnsTextAsTyped(t *testing.T) {
	var m tea.Model = NewPromptModel("Weave Search", "")

	m, _ = m.Update(key(" help list "))
	m, cmd := m.Update(key("enter"))

	if !isQuit(cmd) {
		t.Fatal("expected enter to quit the prompt")
	}
	if got := m.(PromptModel).Value(); got != " help list " {
		t.Errorf("expected untrimmed input, got %q", got)
	}
}

func TestPromptModel_EscapeCancels(t *testing.T) {
	var m tea.Model = NewPromptModel("Weave Search", "")

	m, _ = m.Update(key("abc"))
	m, cmd := m.Update(key("esc"))

	if !isQuit(cmd) {
		t.Fatal("expected esc to quit the prompt")
	}
	pm := m.(PromptModel)
	if !pm.Cancelled() {
		t.Error("expected prompt to be cancelled")
	}
	if pm.Value() != "" {
		t.Errorf("expected empty value after cancel, got %q", pm.Value())
	}
}

func TestPagerModel_ShowsNameAndContent(t *testing.T) {
	var m tea.Model = NewPagerModel("Weave Search Results", "Results from chosen: a.md\nbody")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	view := m.View()
	if !strings.Contains(view, "Weave Search Results") {
		t.Errorf("expected pager title in view, got %q", view)
	}
	if !strings.Contains(view, "Results from chosen: a.md") {
		t.Errorf("expected content in view, got %q", view)
	}

	_, cmd := m.Update(key("q"))
	if !isQuit(cmd) {
		t.Error("expected q to close the pager")
	}
}

func TestSetupModel_RequiresBothFields(t *testing.T) {
	var m tea.Model = NewSetupModel()

	m, _ = m.Update(key("enter"))
	if got := m.(SetupModel).error; got != "API key is required" {
		t.Errorf("unexpected error %q", got)
	}

	m, _ = m.Update(key("secret"))
	m, _ = m.Update(key("enter"))
	if got := m.(SetupModel).error; got != "Service URL is required" {
		t.Errorf("unexpected error %q", got)
	}

	m, _ = m.Update(key("tab"))
	m, _ = m.Update(key("https://kb.example.com"))
	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected submit command")
	}

	msg, ok := cmd().(SetupSubmitMsg)
	if !ok {
		t.Fatalf("expected SetupSubmitMsg, got %T", cmd())
	}
	if msg.APIKey != "secret" || msg.ServiceURL != "https://kb.example.com" {
		t.Errorf("unexpected submit message %+v", msg)
	}
}

func TestWriterSurface_WritesOnShow(t *testing.T) {
	var buf bytes.Buffer
	s := WriterDisplay{W: &buf}.NewSurface("Weave Search Results")

	if err := s.AppendLine("Results from chosen: a.md"); err != nil {
		t.Fatal(err)
	}
	if err := s.Append("body text"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written before Show, got %q", buf.String())
	}

	if err := s.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Results from chosen: a.md\nbody text\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTerminal_ShowErrorWithoutProgram(t *testing.T) {
	var errOut bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader(""), &bytes.Buffer{}, &errOut)

	term.ShowError("Failed to query search service: boom")

	if !strings.Contains(errOut.String(), "Failed to query search service: boom") {
		t.Errorf("expected error on errOut, got %q", errOut.String())
	}
}

func TestTerminal_ShowErrorAfterProgramFinished(t *testing.T) {
	p := tea.NewProgram(NewPickModel([]string{"a.md"}),
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	if _, err := p.Run(); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	term := NewTerminalWithIO(strings.NewReader(""), io.Discard, io.Discard)
	term.setActive(p)

	done := make(chan struct{})
	go func() {
		term.ShowError("Failed to query search service: timeout")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ShowError blocked on a finished program")
	}
}
