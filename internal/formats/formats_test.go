package formats

import "testing"

func TestTag(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantTag string
		wantOK  bool
	}{
		{name: "epub", file: "book.epub", wantTag: "epub", wantOK: true},
		{name: "uppercase is lowered", file: "Moby Dick.EPUB", wantTag: "epub", wantOK: true},
		{name: "double extension keeps last", file: "war.fb2.zip", wantTag: "zip", wantOK: true},
		{name: "no extension", file: "notes", wantOK: false},
		{name: "trailing dot", file: "notes.", wantOK: false},
		{name: "path with dotted folder", file: "books.old/readme", wantOK: false},
		{name: "full path", file: "classics/anna.fb2", wantTag: "fb2", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := Tag(tt.file)
			if ok != tt.wantOK || tag != tt.wantTag {
				t.Errorf("Tag(%q) = (%q, %v), want (%q, %v)", tt.file, tag, ok, tt.wantTag, tt.wantOK)
			}
		})
	}
}

func TestLinkType(t *testing.T) {
	if got := LinkType("epub"); got != ".epub" {
		t.Errorf("LinkType(epub) = %q, want .epub", got)
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"book.epub":           "book",
		"classics/anna.fb2":   "anna",
		"war.fb2.zip":         "war.fb2",
		"notes":               "notes",
		`windows\style\a.txt`: "a",
	}

	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{FB2, "application/x-fictionbook+xml"},
		{EPUB, "application/epub+zip"},
		{"pdf", "application/pdf"},
		{"xyz", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := MimeType(tt.tag); got != tt.want {
				t.Errorf("MimeType(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}
