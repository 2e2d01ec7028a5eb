package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mgomes/weavesearch/internal/logger"
	"github.com/mgomes/weavesearch/internal/metrics"
	"github.com/mgomes/weavesearch/internal/result"
)

const (
	stageInput        = "input"
	stageRetrieval    = "retrieval"
	stageResolution   = "resolution"
	stageSelection    = "selection"
	stagePresentation = "presentation"
)

// input asks the user for the query. Cancelling yields "".
func (s *Searcher) input(ctx context.Context) string {
	log := logger.FromContext(ctx)

	query, err := s.prompter.Prompt(ctx)
	if err != nil {
		log.Error("prompt failed", zap.String("stage", stageInput), zap.Error(err))
		s.metrics.Stage(stageInput, metrics.OutcomeFailed)
		return ""
	}

	log.Debug("query received", zap.Int("length", len(query)))
	s.metrics.Stage(stageInput, metrics.OutcomeOK)
	return query
}

// retrieve sends the query to the search service exactly once. On failure
// the user is notified and the nil sentinel is returned.
func (s *Searcher) retrieve(ctx context.Context, query *future[string]) json.RawMessage {
	log := logger.FromContext(ctx)

	q, ok := query.Await(ctx)
	if !ok {
		s.metrics.Stage(stageRetrieval, metrics.OutcomeSkipped)
		return nil
	}

	start := time.Now()
	raw, err := s.retriever.Search(ctx, q)
	s.metrics.ObserveRetrieval(time.Since(start))

	if err != nil {
		log.Error("search failed", zap.String("stage", stageRetrieval), zap.Error(err))
		s.notifier.ShowError(fmt.Sprintf("Failed to query search service: %v", err))
		s.metrics.Stage(stageRetrieval, metrics.OutcomeFailed)
		return nil
	}

	log.Debug("search response received", zap.Int("bytes", len(raw)), zap.Duration("took", time.Since(start)))
	s.metrics.Stage(stageRetrieval, metrics.OutcomeOK)
	return raw
}

// resolve picks the documents for the query. Help queries are answered
// from the fallback table without waiting for the search response; all
// others wait for it and parse it, nil sentinel included.
func (s *Searcher) resolve(ctx context.Context, query *future[string], remote *future[json.RawMessage]) result.Mapping {
	log := logger.FromContext(ctx)

	q, ok := query.Await(ctx)
	if !ok {
		s.metrics.Stage(stageResolution, metrics.OutcomeSkipped)
		return nil
	}

	if s.fallback.Triggered(q) {
		topic, docs := s.fallback.Match(q)
		log.Info("answered from fallback table", zap.String("topic", topic), zap.Int("documents", docs.Len()))
		log.Debug("search request still runs; the run ends once it returns or times out")
		s.metrics.Fallback(topic)
		s.metrics.Stage(stageResolution, metrics.OutcomeFallback)
		return docs
	}

	raw, ok := remote.Await(ctx)
	if !ok {
		s.metrics.Stage(stageResolution, metrics.OutcomeSkipped)
		return nil
	}

	docs, err := s.parser.Parse(raw)
	if err != nil {
		log.Error("parse failed", zap.String("stage", stageResolution), zap.Error(err))
		s.metrics.Stage(stageResolution, metrics.OutcomeFailed)
		return nil
	}

	s.metrics.Stage(stageResolution, metrics.OutcomeOK)
	return docs
}

// selectKey lists the document keys and returns the user's choice, or ""
// when the user cancels.
func (s *Searcher) selectKey(ctx context.Context, query *future[string], mapping *future[result.Mapping]) string {
	log := logger.FromContext(ctx)

	docs, ok := mapping.Await(ctx)
	if !ok {
		s.metrics.Stage(stageSelection, metrics.OutcomeSkipped)
		return ""
	}
	q, _ := query.Await(ctx)

	keys := s.order(ctx, q, docs)

	choice, err := s.picker.Pick(ctx, keys)
	if err != nil {
		log.Error("selection failed", zap.String("stage", stageSelection), zap.Error(err))
		s.metrics.Stage(stageSelection, metrics.OutcomeFailed)
		return ""
	}

	log.Debug("document selected", zap.String("key", choice), zap.Int("choices", len(keys)))
	s.metrics.Stage(stageSelection, metrics.OutcomeOK)
	return choice
}

// order returns the keys of docs, most relevant first when a ranker is set.
// Ranking is best effort: any failure keeps the sorted order.
func (s *Searcher) order(ctx context.Context, query string, docs result.Mapping) []string {
	keys := docs.Keys()
	if s.ranker == nil || query == "" || len(keys) < 2 {
		return keys
	}

	bodies := make([]string, len(keys))
	for i, k := range keys {
		bodies[i] = docs[k]
	}

	idx, err := s.ranker.Rank(ctx, query, bodies)
	if err == nil && len(idx) != len(keys) {
		err = fmt.Errorf("ranker returned %d indexes for %d documents", len(idx), len(keys))
	}
	if err != nil {
		logger.FromContext(ctx).Warn("ranking failed, keeping sorted order", zap.Error(err))
		return keys
	}

	ranked := make([]string, 0, len(keys))
	seen := make([]bool, len(keys))
	for _, i := range idx {
		if i < 0 || i >= len(keys) || seen[i] {
			logger.FromContext(ctx).Warn("ranker returned invalid order, keeping sorted order", zap.Ints("order", idx))
			return keys
		}
		seen[i] = true
		ranked = append(ranked, keys[i])
	}
	return ranked
}

// present writes the selected document to a new surface and reveals it.
// A cancelled selection shows nothing; a key missing from the mapping shows
// the header and a notice instead of a body.
func (s *Searcher) present(ctx context.Context, name string, selected *future[string], mapping *future[result.Mapping]) {
	log := logger.FromContext(ctx)

	surface := s.display.NewSurface(name)

	docs, ok := mapping.Await(ctx)
	if !ok {
		s.metrics.Stage(stagePresentation, metrics.OutcomeSkipped)
		return
	}
	choice, ok := selected.Await(ctx)
	if !ok || choice == "" {
		log.Info("no document selected")
		s.metrics.Stage(stagePresentation, metrics.OutcomeSkipped)
		return
	}

	if err := write(surface, choice, docs); err != nil {
		log.Error("writing results failed", zap.String("stage", stagePresentation), zap.Error(err))
		s.metrics.Stage(stagePresentation, metrics.OutcomeFailed)
		return
	}

	if err := surface.Show(ctx); err != nil {
		log.Error("showing results failed", zap.String("stage", stagePresentation), zap.Error(err))
		s.metrics.Stage(stagePresentation, metrics.OutcomeFailed)
		return
	}

	s.metrics.Stage(stagePresentation, metrics.OutcomeOK)
}

func write(surface Surface, choice string, docs result.Mapping) error {
	if err := surface.AppendLine("Results from chosen: " + choice); err != nil {
		return err
	}

	body, ok := docs.Body(choice)
	if !ok {
		return surface.AppendLine(fmt.Sprintf("No content found for %s.", choice))
	}
	return surface.Append(body)
}
