package formats

import (
	"path"
	"strings"
)

const (
	// FB2 is the FictionBook 2 XML format.
	FB2 = "fb2"
	// EPUB is the OPS/OPF zip container format.
	EPUB = "epub"
	// ZIP is a zip archive, typically wrapping a single fb2 file.
	ZIP = "zip"
	// TXT is plain text.
	TXT = "txt"
)

// MimeTypes maps format tags to their MIME types.
var MimeTypes = map[string]string{
	FB2:    "application/x-fictionbook+xml",
	EPUB:   "application/epub+zip",
	ZIP:    "application/zip",
	TXT:    "text/plain; charset=utf-8",
	"pdf":  "application/pdf",
	"mobi": "application/x-mobipocket-ebook",
	"djvu": "image/vnd.djvu",
	"rtf":  "application/rtf",
}

// Tag returns the format tag of a file name: its extension, lowercased,
// without the leading dot. ok is false when the name has no extension.
func Tag(name string) (tag string, ok bool) {
	ext := path.Ext(name)
	if ext == "" || ext == "." {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(ext, ".")), true
}

// LinkType returns the dotted form of a tag as stored in book links.
func LinkType(tag string) string {
	return "." + tag
}

// Stem returns the file name without its extension.
func Stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// MimeType returns the MIME type for a format tag, or
// "application/octet-stream" if the tag is not recognized.
func MimeType(tag string) string {
	if mime, ok := MimeTypes[tag]; ok {
		return mime
	}
	return "application/octet-stream"
}
