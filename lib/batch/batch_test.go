package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func countLines(t *testing.T, buf *bytes.Buffer) int {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	n := 0
	for scanner.Scan() {
		n++
	}
	require.NoError(t, scanner.Err())
	return n
}

func TestFileSinkCounts(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewWriter(NewFileSink(&buf))

	for i := 0; i < 123; i++ {
		require.NoError(t, w.Add(ctx, map[string]string{"fileName": fmt.Sprintf("%d.xml", i)}))
	}
	require.NoError(t, w.Close(ctx))

	require.Equal(t, 123, w.Rows())
	require.Equal(t, 123, w.Written())
	require.Equal(t, 123, countLines(t, &buf))
}

func TestFileSinkLineShape(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewWriter(NewFileSink(&buf))

	require.NoError(t, w.Add(ctx, map[string]string{"fileName": "f.xml", "ReturnHeader_TaxYr": "2022"}))
	require.NoError(t, w.Close(ctx))

	var doc map[string]string
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &doc))
	require.Equal(t, "2022", doc["ReturnHeader_TaxYr"])
}

func TestExactThresholdFlushesWithoutClose(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewWriter(NewFileSink(&buf))

	for i := 0; i < Threshold; i++ {
		require.NoError(t, w.Add(ctx, map[string]int{"i": i}))
	}

	// full batch flushed on Add, before any end-of-input flush
	require.Equal(t, Threshold, countLines(t, &buf))
	require.Equal(t, Threshold, w.Written())

	require.NoError(t, w.Close(ctx))
	require.Equal(t, Threshold, countLines(t, &buf))
}

func TestPartialBatchFlushesOnlyAtClose(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewWriter(NewFileSink(&buf))

	for i := 0; i < Threshold-1; i++ {
		require.NoError(t, w.Add(ctx, map[string]int{"i": i}))
	}
	require.Zero(t, countLines(t, &buf))
	require.Zero(t, w.Written())

	require.NoError(t, w.Close(ctx))
	require.Equal(t, Threshold-1, countLines(t, &buf))
	require.Equal(t, Threshold-1, w.Written())
}

type countingSink struct {
	batches []int
}

func (s *countingSink) Write(ctx context.Context, docs []any) (int, error) {
	s.batches = append(s.batches, len(docs))
	return len(docs), nil
}

func TestBatchBoundaries(t *testing.T) {
	ctx := context.Background()
	sink := &countingSink{}
	w := NewWriter(sink)

	total := Threshold*2 + 17
	for i := 0; i < total; i++ {
		require.NoError(t, w.Add(ctx, i))
	}
	require.NoError(t, w.Close(ctx))

	require.Equal(t, []int{Threshold, Threshold, 17}, sink.batches)
	require.Equal(t, total, w.Written())
}
