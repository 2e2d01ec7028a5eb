package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mgomes/weavesearch/internal/result"
)

type fakePrompter struct {
	query string
	err   error
}

func (p fakePrompter) Prompt(context.Context) (string, error) {
	return p.query, p.err
}

type fakeRetriever struct {
	raw   json.RawMessage
	err   error
	calls atomic.Int32

	mu      sync.Mutex
	queries []string
}

func (r *fakeRetriever) Search(_ context.Context, query string) (json.RawMessage, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()
	return r.raw, r.err
}

// spyParser records what it was given and delegates to fn.
type spyParser struct {
	fn func(json.RawMessage) (result.Mapping, error)

	mu     sync.Mutex
	called bool
	got    json.RawMessage
}

func (p *spyParser) Parse(raw json.RawMessage) (result.Mapping, error) {
	p.mu.Lock()
	p.called = true
	p.got = raw
	p.mu.Unlock()
	return p.fn(raw)
}

func (p *spyParser) wasCalled() (bool, json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.called, p.got
}

type fakePicker struct {
	choose func(items []string) string
	err    error

	mu    sync.Mutex
	items []string
	calls int
}

func (p *fakePicker) Pick(_ context.Context, items []string) (string, error) {
	p.mu.Lock()
	p.items = append([]string(nil), items...)
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if p.choose == nil {
		return "", nil
	}
	return p.choose(items), nil
}

func (p *fakePicker) offered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items
}

func pickKey(key string) func([]string) string {
	return func([]string) string { return key }
}

type memSurface struct {
	name      string
	buf       strings.Builder
	shown     int
	appendErr error
	showErr   error
}

func (s *memSurface) AppendLine(line string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.buf.WriteString(line + "\n")
	return nil
}

func (s *memSurface) Append(text string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.buf.WriteString(text)
	return nil
}

func (s *memSurface) Show(context.Context) error {
	if s.showErr != nil {
		return s.showErr
	}
	s.shown++
	return nil
}

type memDisplay struct {
	surface *memSurface
}

func (d *memDisplay) NewSurface(name string) Surface {
	if d.surface == nil {
		d.surface = &memSurface{}
	}
	d.surface.name = name
	return d.surface
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) ShowError(msg string) {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()
}

type fakeRanker struct {
	order []int
	err   error
}

func (r fakeRanker) Rank(context.Context, string, []string) ([]int, error) {
	return r.order, r.err
}

var errServiceDown = errors.New("dial tcp: connection refused")
