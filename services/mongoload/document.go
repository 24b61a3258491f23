// Package mongoload pulls the newest series 990 snapshot per year back down
// from Drive and loads the filings into MongoDB as nested documents.
package mongoload

import "strings"

// BuildDocument rebuilds the nesting a flattened record encoded in its
// underscore-joined keys. "ReturnHeader_TaxYr" becomes
// {"ReturnHeader": {"TaxYr": ...}}. Empty cells are dropped rather than
// stored as empty strings. When a key is both a leaf and a prefix of a
// deeper key, the deeper path wins; the original flattening guarantees that
// cannot happen for well-formed filings, so no attempt is made to preserve
// both.
func BuildDocument(row map[string]string) map[string]any {
	doc := map[string]any{}
	for key, raw := range row {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		insert(doc, strings.Split(key, "_"), value)
	}
	return doc
}

func insert(doc map[string]any, path []string, value string) {
	for _, part := range path[:len(path)-1] {
		child, ok := doc[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[part] = child
		}
		doc = child
	}
	leaf := path[len(path)-1]
	if _, taken := doc[leaf].(map[string]any); taken {
		return
	}
	doc[leaf] = value
}
