// Package extract turns a selected binary document into plain text.
// Extractors produce ordered per-page fragments; JoinPages applies the
// page and fragment separators every extractor shares.
package extract

import (
	"context"
	"strings"
)

// Document is a selected binary document. Data is opaque to everything but extractors.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the document length in bytes.
func (d *Document) Size() int64 {
	return int64(len(d.Data))
}

// Extractor produces the plain-text contents of a document.
type Extractor interface {
	Extract(ctx context.Context, doc *Document) (string, error)
}

// PageReader decodes a document into per-page text fragments in page order.
type PageReader interface {
	Pages(ctx context.Context, data []byte) ([][]string, error)
}

// JoinPages joins each page's fragments with a single space and terminates
// every page with " \n". Pages ["a"], ["b"], ["c"] yield "a \nb \nc \n".
func JoinPages(pages [][]string) string {
	var b strings.Builder
	for _, fragments := range pages {
		b.WriteString(strings.Join(fragments, " "))
		b.WriteString(" \n")
	}
	return b.String()
}

type pageExtractor struct {
	reader PageReader
}

// FromPages adapts a PageReader into an Extractor that joins pages with JoinPages.
func FromPages(reader PageReader) Extractor {
	return &pageExtractor{reader: reader}
}

func (e *pageExtractor) Extract(ctx context.Context, doc *Document) (string, error) {
	pages, err := e.reader.Pages(ctx, doc.Data)
	if err != nil {
		return "", err
	}
	return JoinPages(pages), nil
}
