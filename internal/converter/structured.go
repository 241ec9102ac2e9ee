package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// JSONConverter pretty-prints a JSON document inside a fenced code block.
type JSONConverter struct{}

func (c *JSONConverter) Signatures() []string {
	return []string{"json"}
}

func (c *JSONConverter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &Result{Markdown: "```json\n" + pretty.String() + "\n```"}, nil
}

// XMLConverter strips an XML document down to its character data, one
// paragraph per top-level text run.
type XMLConverter struct{}

func (c *XMLConverter) Signatures() []string {
	return []string{"xml"}
}

func (c *XMLConverter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	var parts []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return &Result{Markdown: strings.Join(parts, "\n\n")}, nil
}
