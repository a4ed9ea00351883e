package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"book-catalog/internal/formats"
)

var (
	// ErrUnsupportedFormat indicates that no extractor handles the format.
	ErrUnsupportedFormat = errors.New("unsupported book format")
	// ErrMalformedContent indicates that the file could not be parsed.
	ErrMalformedContent = errors.New("malformed book content")
)

// DefaultMaxBytes caps how much of an archive format is buffered.
const DefaultMaxBytes int64 = 32 << 20

// Preview is the bibliographic summary of a book.
type Preview struct {
	Title       string
	AuthorName  string
	Description string
}

// Extractor produces a preview from a book stream.
type Extractor interface {
	Extract(ctx context.Context, format, name string, r io.Reader) (Preview, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, format, name string, r io.Reader) (Preview, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, format, name string, r io.Reader) (Preview, error) {
	return f(ctx, format, name, r)
}

// Registry dispatches to a per-format extractor. Register is not safe for
// concurrent use; Extract is.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry returns a registry with the built-in fb2, epub, zip and txt
// extractors. maxBytes bounds buffering of zip-based formats; 0 uses
// DefaultMaxBytes.
func NewRegistry(maxBytes int64) *Registry {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register(formats.FB2, fb2Extractor{})
	r.Register(formats.EPUB, epubExtractor{maxBytes: maxBytes})
	r.Register(formats.ZIP, zipExtractor{maxBytes: maxBytes})
	r.Register(formats.TXT, txtExtractor{})
	return r
}

// Register installs e for tag, replacing any previous extractor.
func (r *Registry) Register(tag string, e Extractor) {
	r.extractors[strings.ToLower(tag)] = e
}

// Formats returns the registered tags, sorted.
func (r *Registry) Formats() []string {
	tags := make([]string, 0, len(r.extractors))
	for tag := range r.extractors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Supports reports whether a tag has an extractor.
func (r *Registry) Supports(tag string) bool {
	_, ok := r.extractors[strings.ToLower(tag)]
	return ok
}

// Extract runs the extractor registered for format. A preview without a
// title is named after the file.
func (r *Registry) Extract(ctx context.Context, format, name string, src io.Reader) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	e, ok := r.extractors[strings.ToLower(format)]
	if !ok {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	p, err := e.Extract(ctx, format, name, src)
	if err != nil {
		return Preview{}, err
	}

	if p.Title == "" {
		p.Title = formats.Stem(name)
	}
	return p, nil
}
