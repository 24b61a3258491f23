// Package tabular holds the in-memory tabular form every dataset is
// normalized into before upload, plus the lenient parsers that produce it.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadDelimited parses unquoted delimiter-separated text against a
// predeclared column list. Rows whose field count differs from the column
// list are dropped with a logged warning; the returned count says how many
// were dropped.
func ReadDelimited(r io.Reader, delim string, columns []string) (Table, int, error) {
	t := Table{Columns: columns}
	dropped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, delim)
		if len(fields) != len(columns) {
			slog.Warn("dropping malformed row",
				"line", line,
				"expected_fields", len(columns),
				"got_fields", len(fields),
			)
			dropped++
			continue
		}
		t.Rows = append(t.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return Table{}, dropped, fmt.Errorf("scan line %d: %w", line, err)
	}

	return t, dropped, nil
}

// ReadCSV parses a headered CSV. Rows with a mismatched field count are
// dropped with a warning rather than failing the whole file.
func ReadCSV(r io.Reader) (Table, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return Table{}, 0, fmt.Errorf("read header: %w", err)
	}

	t := Table{Columns: header}
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			slog.Warn("dropping malformed row", "expected_fields", len(header), "got_fields", len(record))
			dropped++
			continue
		}
		if err != nil {
			return Table{}, dropped, err
		}
		t.Rows = append(t.Rows, record)
	}

	return t, dropped, nil
}

// WriteCSV serializes the table with its column list as the header row.
func (t Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Append adds the rows of other onto t. The first table's columns win, the
// master extracts all share one schema.
func (t *Table) Append(other Table) {
	if len(t.Columns) == 0 {
		t.Columns = other.Columns
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Head renders the first n rows as a bordered table, a quick sanity preview
// before a snapshot is uploaded.
func (t Table) Head(n int) string {
	w := table.NewWriter()

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	w.AppendHeader(header)

	for i, row := range t.Rows {
		if i >= n {
			break
		}
		out := make(table.Row, len(row))
		for j, cell := range row {
			out[j] = cell
		}
		w.AppendRow(out)
	}

	return w.Render()
}
