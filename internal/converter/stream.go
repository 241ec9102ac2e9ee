package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// sniffed MIME prefixes → registry signatures, for uploads without a usable
// file extension.
var mimeSignatures = []struct {
	prefix    string
	signature string
}{
	{"text/html", "html"},
	{"text/csv", "csv"},
	{"application/json", "json"},
	{"text/xml", "xml"},
	{"application/xml", "xml"},
	{"text/plain", "txt"},
}

// Adapter invokes one converter against an in-memory byte stream exactly
// once. The input does not need to be seekable and is never persisted.
type Adapter struct {
	registry *Registry
}

// NewAdapter wraps a registry.
func NewAdapter(registry *Registry) *Adapter {
	return &Adapter{registry: registry}
}

// Convert reads the whole stream once, resolves a converter from the
// filename hint (falling back to content sniffing), and runs it. Failures
// are terminal: there is no second converter to try for a given format.
func (a *Adapter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, failed(fmt.Errorf("reading input stream: %w", err))
	}
	size := int64(len(data))

	signature := signatureFor(filename, data)
	conv, err := a.registry.Resolve(signature)
	if err != nil {
		return nil, size, err
	}

	result, err := conv.Convert(ctx, bytes.NewReader(data), filename)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			return nil, size, err
		}
		return nil, size, failed(err)
	}
	return result, size, nil
}

// signatureFor derives the registry signature from the filename extension,
// sniffing the payload when the extension is missing or meaningless.
func signatureFor(filename string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext != "" && ext != "bin" && ext != "dat" {
		return ext
	}

	// DetectContentType reports JSON as text/plain, so check it directly.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(data) {
		return "json"
	}

	mime := http.DetectContentType(data)
	for _, m := range mimeSignatures {
		if strings.HasPrefix(mime, m.prefix) {
			return m.signature
		}
	}
	if ext != "" {
		return ext
	}
	return mime
}
