// Package preview extracts bibliographic previews (title, author,
// description) from book files without parsing the whole document.
//
// Extractors are looked up by format tag in a Registry. Every failure is
// reported as an error wrapping ErrUnsupportedFormat or ErrMalformedContent
// (or the underlying read error); callers are expected to skip the file.
package preview
