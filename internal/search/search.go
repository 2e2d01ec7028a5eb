// Package search runs the query-to-result pipeline: prompt for a query, ask
// the search service, fall back to built-in documents for help queries, let
// the user pick a document and show it.
//
// Every stage starts at once and waits only on the values it needs. A failed
// stage logs, then hands a sentinel (empty query, nil response, nil mapping,
// empty selection) downstream instead of stopping the run.
package search

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mgomes/weavesearch/internal/logger"
	"github.com/mgomes/weavesearch/internal/metrics"
	"github.com/mgomes/weavesearch/internal/result"
)

// OutputName names the display surface results are written to.
const OutputName = "Weave Search Results"

type Prompter interface {
	Prompt(ctx context.Context) (string, error)
}

type Retriever interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
}

type Parser interface {
	Parse(raw json.RawMessage) (result.Mapping, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(raw json.RawMessage) (result.Mapping, error)

func (f ParserFunc) Parse(raw json.RawMessage) (result.Mapping, error) {
	return f(raw)
}

type Fallback interface {
	Triggered(query string) bool
	Match(query string) (topic string, docs result.Mapping)
}

type Picker interface {
	Pick(ctx context.Context, items []string) (string, error)
}

// Ranker orders documents by relevance, returning indexes into documents.
type Ranker interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}

type Display interface {
	NewSurface(name string) Surface
}

type Surface interface {
	AppendLine(line string) error
	Append(text string) error
	Show(ctx context.Context) error
}

type Notifier interface {
	ShowError(msg string)
}

// Deps are the collaborators of a Searcher. Ranker, Notifier and Metrics
// are optional.
type Deps struct {
	Prompter  Prompter
	Retriever Retriever
	Parser    Parser
	Fallback  Fallback
	Picker    Picker
	Display   Display
	Ranker    Ranker
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

type Searcher struct {
	prompter  Prompter
	retriever Retriever
	parser    Parser
	fallback  Fallback
	picker    Picker
	display   Display
	ranker    Ranker
	notifier  Notifier
	metrics   *metrics.Metrics
}

func New(deps Deps) *Searcher {
	s := &Searcher{
		prompter:  deps.Prompter,
		retriever: deps.Retriever,
		parser:    deps.Parser,
		fallback:  deps.Fallback,
		picker:    deps.Picker,
		display:   deps.Display,
		ranker:    deps.Ranker,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Run executes one search. It returns after every stage has finished; stage
// failures are logged rather than returned. The only error is ctx's.
func (s *Searcher) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).With(zap.String("run_id", uuid.NewString()))
	ctx = logger.ContextWithLogger(ctx, log)
	log.Debug("search run started")

	var g errgroup.Group

	query := spawn(&g, func() string {
		return s.input(ctx)
	})
	remote := spawn(&g, func() json.RawMessage {
		return s.retrieve(ctx, query)
	})
	mapping := spawn(&g, func() result.Mapping {
		return s.resolve(ctx, query, remote)
	})
	selected := spawn(&g, func() string {
		return s.selectKey(ctx, query, mapping)
	})
	g.Go(func() error {
		s.present(ctx, OutputName, selected, mapping)
		return nil
	})

	// Stage goroutines never return errors; Wait only marks completion.
	_ = g.Wait()

	log.Debug("search run finished")
	return ctx.Err()
}

type nopNotifier struct{}

func (nopNotifier) ShowError(string) {}
