package preview

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// fb2Extractor reads the <description><title-info> block of a FictionBook
// document and stops decoding at </description>, before the body.
type fb2Extractor struct{}

func (fb2Extractor) Extract(ctx context.Context, _, _ string, r io.Reader) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}
	return parseFB2(r)
}

// charsetReader decodes legacy FictionBook encodings such as windows-1251.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

type fb2Author struct {
	first, middle, last, nick string
}

func (a fb2Author) String() string {
	name := collapseSpace(strings.Join([]string{a.first, a.middle, a.last}, " "))
	if name == "" {
		return collapseSpace(a.nick)
	}
	return name
}

func parseFB2(r io.Reader) (Preview, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader
	d.Strict = false
	d.Entity = xml.HTMLEntity

	var (
		stack      []string
		sawRoot    bool
		title      strings.Builder
		authors    []string
		author     fb2Author
		paragraphs []string
		para       strings.Builder
	)

	// in reports whether the open elements below the root start with path.
	in := func(path ...string) bool {
		if len(stack) < len(path)+1 {
			return false
		}
		for i, name := range path {
			if stack[i+1] != name {
				return false
			}
		}
		return true
	}
	flushPara := func() {
		if p := collapseSpace(para.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		para.Reset()
	}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if !sawRoot {
				return Preview{}, fmt.Errorf("%w: not a FictionBook document", ErrMalformedContent)
			}
			return Preview{}, fmt.Errorf("%w: document ends before </description>", ErrMalformedContent)
		}
		if err != nil {
			return Preview{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && t.Name.Local != "FictionBook" {
				return Preview{}, fmt.Errorf("%w: root element is <%s>", ErrMalformedContent, t.Name.Local)
			}
			if len(stack) == 1 && t.Name.Local == "body" {
				return Preview{}, fmt.Errorf("%w: <body> before <description>", ErrMalformedContent)
			}
			sawRoot = true
			stack = append(stack, t.Name.Local)
			if len(stack) == 4 && in("description", "title-info", "author") {
				author = fb2Author{}
			}

		case xml.CharData:
			switch {
			case in("description", "title-info", "book-title"):
				title.Write(t)
			case in("description", "title-info", "author", "first-name"):
				author.first += string(t)
			case in("description", "title-info", "author", "middle-name"):
				author.middle += string(t)
			case in("description", "title-info", "author", "last-name"):
				author.last += string(t)
			case in("description", "title-info", "author", "nickname"):
				author.nick += string(t)
			case in("description", "title-info", "annotation"):
				para.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			switch {
			case len(stack) == 4 && in("description", "title-info", "author"):
				authors = append(authors, author.String())
			case in("description", "title-info", "annotation") && (len(stack) == 4 || t.Name.Local == "p"):
				flushPara()
			case len(stack) == 2 && in("description"):
				return Preview{
					Title:       collapseSpace(title.String()),
					AuthorName:  joinNames(authors),
					Description: truncate(strings.Join(paragraphs, "\n"), descriptionLimit),
				}, nil
			}
			stack = stack[:len(stack)-1]
		}
	}
}
