// Package result holds the document mapping produced by a search run.
package result

import "sort"

// Mapping maps a document key (usually a file name) to its body text.
// A Mapping is never modified once a stage has produced it.
type Mapping map[string]string

// Keys returns the document keys in a stable, sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Body returns the body stored under key.
func (m Mapping) Body(key string) (string, bool) {
	body, ok := m[key]
	return body, ok
}

func (m Mapping) Len() int {
	return len(m)
}
