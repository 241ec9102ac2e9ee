package converter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders a CSV document as a markdown table. The first row is
// treated as the header.
type CSVConverter struct{}

func (c *CSVConverter) Signatures() []string {
	return []string{"csv", "tsv"}
}

func (c *CSVConverter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		reader.Comma = '\t'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < width; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}

	return &Result{Markdown: strings.TrimSpace(b.String())}, nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
