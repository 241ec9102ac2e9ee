package converter

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TextConverter passes plain text and markdown through, normalizing line
// endings and lifting a leading heading into the title.
type TextConverter struct{}

func (c *TextConverter) Signatures() []string {
	return []string{"txt", "md", "markdown", "text"}
}

func (c *TextConverter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSpace(text)

	title := ""
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.HasPrefix(firstLine, "# ") {
		title = strings.TrimSpace(strings.TrimPrefix(firstLine, "# "))
	}

	return &Result{Markdown: text, Title: title}, nil
}
