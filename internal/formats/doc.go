// Package formats holds the file-extension conventions shared by the catalog.
//
// It is dependency-free so that storage, preview and handler packages can all
// import it without creating cycles.
//
// # Format Tags
//
// A format tag is the lowercase extension without its leading dot. It selects
// a preview extractor:
//
//	tag, ok := formats.Tag("Moby Dick.EPUB") // "epub", true
//	tag, ok := formats.Tag("notes")          // "", false
//
// Book links carry the dotted form:
//
//	formats.LinkType("epub") // ".epub"
//
// # MIME Types
//
// MimeType returns the type used when a book is downloaded over HTTP:
//
//	formats.MimeType("fb2") // "application/x-fictionbook+xml"
package formats
