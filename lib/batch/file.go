package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// FileSink writes each record as one JSON line; a batch is flushed as a
// single write of all lines joined by newlines.
type FileSink struct {
	w io.Writer
}

func NewFileSink(w io.Writer) *FileSink {
	return &FileSink{w: w}
}

func (s *FileSink) Write(ctx context.Context, docs []any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return 0, err
		}
	}
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(docs), nil
}
