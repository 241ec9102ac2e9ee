package converter

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := DefaultRegistry()

	for _, sig := range []string{"html", "HTM", "csv", "json", "xml", "txt", "md"} {
		if _, err := reg.Resolve(sig); err != nil {
			t.Errorf("Resolve(%q) failed: %v", sig, err)
		}
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Resolve("exe")
	if err == nil {
		t.Fatal("expected error for unknown signature")
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if cerr.Kind != KindUnsupportedFormat {
		t.Errorf("kind = %q, want %q", cerr.Kind, KindUnsupportedFormat)
	}
}

func TestAdapter_ConvertText(t *testing.T) {
	adapter := NewAdapter(DefaultRegistry())

	input := "# Notes\n\nSome body text.\n"
	res, size, err := adapter.Convert(context.Background(), strings.NewReader(input), "notes.md")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if size != int64(len(input)) {
		t.Errorf("size = %d, want %d", size, len(input))
	}
	if res.Title != "Notes" {
		t.Errorf("title = %q", res.Title)
	}
	if !strings.Contains(res.Markdown, "Some body text.") {
		t.Errorf("markdown = %q", res.Markdown)
	}
}

func TestAdapter_SniffsWithoutExtension(t *testing.T) {
	adapter := NewAdapter(DefaultRegistry())

	html := "<html><head><title>Sniffed</title></head><body><article><p>" +
		strings.Repeat("content here ", 40) + "</p></article></body></html>"
	res, _, err := adapter.Convert(context.Background(), strings.NewReader(html), "upload")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.Markdown, "content here") {
		t.Errorf("markdown = %q", res.Markdown)
	}
}

func TestAdapter_UnsupportedBinary(t *testing.T) {
	adapter := NewAdapter(DefaultRegistry())

	// PNG magic bytes: nothing in the registry handles images.
	payload := string([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) + "garbage"
	_, _, err := adapter.Convert(context.Background(), strings.NewReader(payload), "pixel.png")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if cerr.Kind != KindUnsupportedFormat {
		t.Errorf("kind = %q, want UnsupportedFormat", cerr.Kind)
	}
}

func TestAdapter_ConversionFailureKind(t *testing.T) {
	adapter := NewAdapter(DefaultRegistry())

	_, _, err := adapter.Convert(context.Background(), strings.NewReader("{not json"), "broken.json")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if cerr.Kind != KindConversionFailed {
		t.Errorf("kind = %q, want ConversionFailed", cerr.Kind)
	}
}

func TestCSVConverter(t *testing.T) {
	c := &CSVConverter{}
	res, err := c.Convert(context.Background(), strings.NewReader("name,age\nalice,30\nbob,25\n"), "people.csv")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	lines := strings.Split(res.Markdown, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), res.Markdown)
	}
	if lines[0] != "| name | age |" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[2] != "| alice | 30 |" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestCSVConverter_EscapesPipes(t *testing.T) {
	c := &CSVConverter{}
	res, err := c.Convert(context.Background(), strings.NewReader("col\na|b\n"), "x.csv")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.Markdown, `a\|b`) {
		t.Errorf("pipe not escaped: %q", res.Markdown)
	}
}

func TestJSONConverter(t *testing.T) {
	c := &JSONConverter{}
	res, err := c.Convert(context.Background(), strings.NewReader(`{"a":1,"b":[2,3]}`), "data.json")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.HasPrefix(res.Markdown, "```json\n") || !strings.HasSuffix(res.Markdown, "\n```") {
		t.Errorf("not fenced: %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, `"a": 1`) {
		t.Errorf("not indented: %q", res.Markdown)
	}
}

func TestXMLConverter(t *testing.T) {
	c := &XMLConverter{}
	res, err := c.Convert(context.Background(),
		strings.NewReader(`<doc><title>Report</title><body>Hello <b>world</b></body></doc>`), "doc.xml")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	for _, want := range []string{"Report", "Hello", "world"} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in %q", want, res.Markdown)
		}
	}
	if strings.Contains(res.Markdown, "<") {
		t.Errorf("tags not stripped: %q", res.Markdown)
	}
}

func TestHTMLConverter(t *testing.T) {
	c := &HTMLConverter{}
	html := `<html><head><title>My Page</title></head><body><article><h2>Section</h2><p>` +
		strings.Repeat("Readable paragraph text. ", 30) + `</p></article></body></html>`

	res, err := c.Convert(context.Background(), strings.NewReader(html), "page.html")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Title == "" {
		t.Error("expected a title")
	}
	if !strings.Contains(res.Markdown, "Readable paragraph text.") {
		t.Errorf("lost body text: %q", res.Markdown[:min(len(res.Markdown), 200)])
	}
}

func TestSignatureFor(t *testing.T) {
	tests := []struct {
		filename string
		data     string
		want     string
	}{
		{"report.HTML", "", "html"},
		{"notes.txt", "", "txt"},
		{"upload", `{"k":"v"}`, "json"},
		{"upload", "plain words only, nothing else here", "txt"},
	}
	for _, tt := range tests {
		if got := signatureFor(tt.filename, []byte(tt.data)); got != tt.want {
			t.Errorf("signatureFor(%q, %q) = %q, want %q", tt.filename, tt.data, got, tt.want)
		}
	}
}
