package preview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// txtPreviewBytes is how much of a text file is read for its description.
const txtPreviewBytes = 64 << 10

// txtExtractor titles a text file after its name and describes it with its
// first paragraph. A byte order mark selects UTF-16; otherwise UTF-8.
type txtExtractor struct{}

func (txtExtractor) Extract(ctx context.Context, _, _ string, r io.Reader) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(io.LimitReader(r, txtPreviewBytes), decoder))
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	return Preview{Description: truncate(firstParagraph(string(data)), descriptionLimit)}, nil
}

// firstParagraph returns the first run of non-blank lines, whitespace collapsed.
func firstParagraph(text string) string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, line)
	}
	return collapseSpace(strings.Join(lines, " "))
}
