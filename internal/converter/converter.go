// Package converter turns locally-supplied document bytes into markdown.
// A static registry maps content-type signatures to converters; there is no
// retry logic here because no alternative converter exists for a declared
// format.
package converter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Error kinds surfaced to API callers in the "type" field.
const (
	KindUnsupportedFormat = "UnsupportedFormat"
	KindConversionFailed  = "ConversionFailed"
)

// Error carries a stable machine-readable kind next to the human-readable
// cause, so callers can map failures without matching message strings.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func unsupported(signature string) *Error {
	return &Error{
		Kind: KindUnsupportedFormat,
		Err:  fmt.Errorf("unsupported format: %q", signature),
	}
}

func failed(err error) *Error {
	return &Error{Kind: KindConversionFailed, Err: err}
}

// Result holds the output of one conversion.
type Result struct {
	Markdown string
	Title    string
}

// Converter converts one document format to markdown.
type Converter interface {
	// Signatures returns the content-type signatures (lowercase file
	// extensions) this converter handles.
	Signatures() []string

	// Convert reads the document once and produces markdown. The reader is
	// not assumed to be seekable.
	Convert(ctx context.Context, r io.Reader, filename string) (*Result, error)
}

// Registry is the static signature → converter mapping, built once at
// startup. Pure dispatch: no retries, no network.
type Registry struct {
	bySignature map[string]Converter
}

// NewRegistry builds a registry over the given converters. Later converters
// win signature collisions.
func NewRegistry(converters ...Converter) *Registry {
	m := make(map[string]Converter)
	for _, c := range converters {
		for _, sig := range c.Signatures() {
			m[strings.ToLower(sig)] = c
		}
	}
	return &Registry{bySignature: m}
}

// DefaultRegistry wires up every built-in converter.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&TextConverter{},
		&HTMLConverter{},
		&CSVConverter{},
		&JSONConverter{},
		&XMLConverter{},
	)
}

// Resolve maps a signature to its converter, or an UnsupportedFormat error.
func (r *Registry) Resolve(signature string) (Converter, error) {
	c, ok := r.bySignature[strings.ToLower(signature)]
	if !ok {
		return nil, unsupported(signature)
	}
	return c, nil
}

// Signatures lists every registered signature, sorted, for the service
// descriptor endpoint.
func (r *Registry) Signatures() []string {
	sigs := make([]string, 0, len(r.bySignature))
	for sig := range r.bySignature {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}
