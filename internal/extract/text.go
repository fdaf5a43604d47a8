package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ContentTypeText is the media type handled by PlainText.
const ContentTypeText = "text/plain"

// PlainText reads UTF-8 text documents. Form feeds separate pages
// and each non-blank line of a page is one fragment.
type PlainText struct{}

// Pages splits text into pages and line fragments.
func (PlainText) Pages(ctx context.Context, data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text is not valid utf-8", ErrDecode)
	}

	raw := strings.Split(string(data), "\f")
	pages := make([][]string, 0, len(raw))

	for _, page := range raw {
		var fragments []string
		for line := range strings.Lines(page) {
			if s := strings.TrimSpace(line); s != "" {
				fragments = append(fragments, s)
			}
		}
		pages = append(pages, fragments)
	}

	return pages, nil
}
