package preview

import (
	"context"
	"fmt"
	"io"

	"book-catalog/internal/formats"
)

// zipExtractor previews the first FictionBook entry of a zip archive, the
// usual packaging of "book.fb2.zip" files.
type zipExtractor struct {
	maxBytes int64
}

func (e zipExtractor) Extract(ctx context.Context, _, _ string, r io.Reader) (Preview, error) {
	zr, err := openArchive(ctx, r, e.maxBytes)
	if err != nil {
		return Preview{}, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if tag, ok := formats.Tag(f.Name); !ok || tag != formats.FB2 {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return Preview{}, fmt.Errorf("%w: %s: %v", ErrMalformedContent, f.Name, err)
		}
		defer rc.Close()

		p, err := parseFB2(rc)
		if err != nil {
			return Preview{}, err
		}
		if p.Title == "" {
			p.Title = formats.Stem(f.Name)
		}
		return p, nil
	}

	return Preview{}, fmt.Errorf("%w: archive holds no %s entry", ErrUnsupportedFormat, formats.FB2)
}
