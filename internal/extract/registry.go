package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type registration struct {
	contentType string
	extractor   Extractor
}

// Registry selects an Extractor by the sniffed content type of a document.
// Detection walks the mimetype hierarchy, so formats derived from a registered
// type (for example JSON from text/plain) resolve to its extractor.
type Registry struct {
	entries []registration
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("system", "extract"),
	}
}

// NewDefaultRegistry creates a Registry with the PDF and plain-text extractors.
func NewDefaultRegistry(logger *slog.Logger, workers int) *Registry {
	r := NewRegistry(logger)
	r.Register(ContentTypePDF, FromPages(NewPDF(logger, workers)))
	r.Register(ContentTypeText, FromPages(PlainText{}))
	return r
}

// Register associates an extractor with a media type. Earlier registrations win ties.
func (r *Registry) Register(contentType string, e Extractor) {
	r.entries = append(r.entries, registration{contentType: contentType, extractor: e})
}

// ContentTypes returns the registered media types in registration order.
func (r *Registry) ContentTypes() []string {
	types := make([]string, len(r.entries))
	for i, e := range r.entries {
		types[i] = e.contentType
	}
	return types
}

// Extract detects the document type and delegates to the matching extractor.
func (r *Registry) Extract(ctx context.Context, doc *Document) (string, error) {
	e, contentType, err := r.resolve(doc)
	if err != nil {
		return "", err
	}

	r.logger.DebugContext(
		ctx, "extracting document",
		"name", doc.Name,
		"content_type", contentType,
		"size", doc.Size(),
	)

	return e.Extract(ctx, doc)
}

// Detect returns the sniffed media type of data without parameters.
func Detect(data []byte) string {
	return stripParams(mimetype.Detect(data).String())
}

func (r *Registry) resolve(doc *Document) (Extractor, string, error) {
	for m := mimetype.Detect(doc.Data); m != nil; m = m.Parent() {
		for _, entry := range r.entries {
			if m.Is(entry.contentType) {
				return entry.extractor, entry.contentType, nil
			}
		}
	}

	declared := stripParams(doc.ContentType)
	for _, entry := range r.entries {
		if declared == entry.contentType {
			return entry.extractor, entry.contentType, nil
		}
	}

	return nil, "", fmt.Errorf(
		"%w: %w: %s",
		ErrDecode, ErrUnsupportedType,
		stripParams(mimetype.Detect(doc.Data).String()),
	)
}

func stripParams(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType)
}
