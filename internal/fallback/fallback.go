// Package fallback serves the built-in reference documents used when a query
// asks for help instead of going to the search service.
package fallback

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mgomes/weavesearch/internal/result"
)

// Trigger is the substring that routes a query to the fallback table.
// Matching is case-sensitive.
const Trigger = "help"

//go:embed fallback.yaml
var tableYAML []byte

type Topic struct {
	Keyword   string   `yaml:"keyword"`
	Documents []string `yaml:"documents"`
}

// Table is the parsed fallback data. It is read-only after Parse returns.
type Table struct {
	Documents map[string]string `yaml:"documents"`
	Topics    []Topic           `yaml:"topics"`
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(tableYAML)
})

// Default returns the embedded table.
func Default() (*Table, error) {
	return loadDefault()
}

// Parse decodes a table and checks that every topic refers to known documents.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse fallback table: %w", err)
	}

	for _, topic := range t.Topics {
		if topic.Keyword == "" {
			return nil, fmt.Errorf("fallback topic without keyword")
		}
		for _, key := range topic.Documents {
			if _, ok := t.Documents[key]; !ok {
				return nil, fmt.Errorf("fallback topic %q references unknown document %q", topic.Keyword, key)
			}
		}
	}

	return &t, nil
}

// Triggered reports whether query should be answered from the table.
func (t *Table) Triggered(query string) bool {
	return strings.Contains(query, Trigger)
}

// Match returns the first topic whose keyword occurs in query, with a fresh
// copy of its documents. A query matching no topic gets "" and an empty,
// non-nil mapping.
func (t *Table) Match(query string) (string, result.Mapping) {
	for _, topic := range t.Topics {
		if !strings.Contains(query, topic.Keyword) {
			continue
		}
		m := make(result.Mapping, len(topic.Documents))
		for _, key := range topic.Documents {
			m[key] = t.Documents[key]
		}
		return topic.Keyword, m
	}
	return "", result.Mapping{}
}
