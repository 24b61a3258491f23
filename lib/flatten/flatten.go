// Package flatten turns a nested IRS filing document into a single-level
// key/value record. Nested tag names are joined with underscores, namespaces
// are stripped, and only leaf elements contribute values.
package flatten

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FileNameKey is the reserved key carrying the provenance of a record.
const FileNameKey = "fileName"

type Record map[string]string

type frame struct {
	name     string
	text     strings.Builder
	hasChild bool
}

// Filing flattens one XML filing. Key collisions are not special-cased: a
// later sibling with an identical flattened key overwrites an earlier one.
// Elements with empty or whitespace-only text are omitted. A parse error
// fails the whole filing, the caller decides whether to skip it.
func Filing(data []byte, filename string) (Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	rec := Record{FileNameKey: filename}

	// iterative depth-first walk, filing nesting depth is not trusted
	var stack []*frame
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].hasChild = true
			}
			stack = append(stack, &frame{name: t.Name.Local})
			sawRoot = true
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			// the root tag contributes no key, and elements with
			// children contribute only through their descendants
			if len(stack) == 0 || top.hasChild {
				continue
			}
			value := strings.TrimSpace(top.text.String())
			if value == "" {
				continue
			}
			rec[key(stack, top.name)] = value
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("parse %s: no root element", filename)
	}
	return rec, nil
}

// key joins every ancestor tag below the root with the leaf's own tag.
func key(stack []*frame, leaf string) string {
	parts := make([]string, 0, len(stack))
	for _, f := range stack[1:] {
		parts = append(parts, f.name)
	}
	parts = append(parts, leaf)
	return strings.Join(parts, "_")
}
