package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/weavesearch/internal/search"
)

// Terminal provides the interactive collaborators of a search run. Only one
// program runs at a time; errors reported meanwhile are printed above it.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	runMu sync.Mutex

	mu     sync.Mutex
	active *tea.Program
}

// NewTerminal uses stdin and stdout for programs and stderr for errors
// raised while no program is running.
func NewTerminal() *Terminal {
	return &Terminal{errOut: os.Stderr}
}

// NewTerminalWithIO is NewTerminal with explicit streams.
func NewTerminalWithIO(in io.Reader, out, errOut io.Writer) *Terminal {
	return &Terminal{in: in, out: out, errOut: errOut}
}

func (t *Terminal) Prompt(ctx context.Context) (string, error) {
	final, err := t.run(ctx, NewPromptModel("Weave Search", "What are you looking for?"))
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}

	m, ok := final.(PromptModel)
	if !ok {
		return "", fmt.Errorf("prompt: unexpected model %T", final)
	}
	return m.Value(), nil
}

func (t *Terminal) Pick(ctx context.Context, items []string) (string, error) {
	final, err := t.run(ctx, NewPickModel(items))
	if err != nil {
		return "", fmt.Errorf("pick: %w", err)
	}

	m, ok := final.(PickModel)
	if !ok {
		return "", fmt.Errorf("pick: unexpected model %T", final)
	}
	return m.Chosen(), nil
}

// ShowError reports a failure to the user without interrupting the UI. It
// never blocks on a program that has already finished.
func (t *Terminal) ShowError(msg string) {
	line := errorStyle.Render("Error: " + msg)

	t.mu.Lock()
	p := t.active
	t.mu.Unlock()

	if p != nil {
		p.Send(tea.Println(line)())
		return
	}
	fmt.Fprintln(t.errOut, line) //nolint:errcheck
}

func (t *Terminal) NewSurface(name string) search.Surface {
	return &PagerSurface{name: name, term: t}
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}

	p := tea.NewProgram(model, opts...)
	t.setActive(p)
	defer t.setActive(nil)

	return p.Run()
}

func (t *Terminal) setActive(p *tea.Program) {
	t.mu.Lock()
	t.active = p
	t.mu.Unlock()
}

// PagerSurface collects text and shows it in a pager when revealed.
type PagerSurface struct {
	name string
	term *Terminal
	buf  strings.Builder
}

func (s *PagerSurface) AppendLine(line string) error {
	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	return nil
}

func (s *PagerSurface) Append(text string) error {
	s.buf.WriteString(text)
	return nil
}

func (s *PagerSurface) Show(ctx context.Context) error {
	_, err := s.term.run(ctx, NewPagerModel(s.name, s.buf.String()))
	if err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}

// WriterDisplay hands out surfaces that print to a plain writer.
type WriterDisplay struct {
	W io.Writer
}

func (d WriterDisplay) NewSurface(name string) search.Surface {
	return &WriterSurface{name: name, w: d.W}
}

// WriterSurface buffers text and writes it out when revealed.
type WriterSurface struct {
	name string
	w    io.Writer
	buf  strings.Builder
}

func (s *WriterSurface) AppendLine(line string) error {
	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	return nil
}

func (s *WriterSurface) Append(text string) error {
	s.buf.WriteString(text)
	return nil
}

func (s *WriterSurface) Show(context.Context) error {
	text := s.buf.String()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(s.w, text)
	return err
}

var (
	_ search.Prompter = (*Terminal)(nil)
	_ search.Picker   = (*Terminal)(nil)
	_ search.Display  = (*Terminal)(nil)
	_ search.Notifier = (*Terminal)(nil)
	_ search.Display  = WriterDisplay{}
)
