package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// ContentTypePDF is the media type handled by PDF.
const ContentTypePDF = "application/pdf"

// PDF reads the text rows of every page of a PDF document.
// Pages decode concurrently, each worker with its own reader over the shared bytes.
type PDF struct {
	logger  *slog.Logger
	workers int
}

// NewPDF creates a PDF page reader. A workers value below one sizes the pool
// to the CPU count.
func NewPDF(logger *slog.Logger, workers int) *PDF {
	return &PDF{
		logger:  logger.With("extractor", "pdf"),
		workers: workers,
	}
}

// Pages returns the text rows of each page, in page order.
func (p *PDF) Pages(ctx context.Context, data []byte) ([][]string, error) {
	count, err := pageCount(data)
	if err != nil {
		return nil, err
	}

	pages := make([][]string, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount(count))

	for i := range count {
		pageNum := i + 1
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rows, err := readPage(data, pageNum)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}

			pages[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	p.logger.DebugContext(ctx, "pdf pages decoded", "page_count", count)
	return pages, nil
}

func (p *PDF) workerCount(pageCount int) int {
	limit := runtime.NumCPU()
	if p.workers > 0 {
		limit = p.workers
	}
	return max(min(limit, pageCount), 1)
}

func open(data []byte) (r *pdf.Reader, err error) {
	// the reader panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageCount(data []byte) (count int, err error) {
	r, err := open(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: malformed page tree: %v", ErrDecode, rec)
		}
	}()

	return r.NumPage(), nil
}

func readPage(data []byte, pageNum int) (rows []string, err error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	textRows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	rows = make([]string, 0, len(textRows))
	for _, row := range textRows {
		var b strings.Builder
		for _, text := range row.Content {
			b.WriteString(text.S)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			rows = append(rows, s)
		}
	}

	return rows, nil
}
