package extract_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/brief/internal/extract"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildPDF assembles a minimal PDF where each page holds one text row per entry,
// positioned top to bottom. A nil page has no content stream.
func buildPDF(pages [][]string) []byte {
	var objects []string

	pageCount := len(pages)
	kids := make([]string, pageCount)
	for i := range pageCount {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)

	for i, rows := range pages {
		contentID := 5 + i*2
		if rows == nil {
			objects = append(objects,
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
				"<< /Length 0 >>\nstream\n\nendstream",
			)
			continue
		}

		var stream strings.Builder
		stream.WriteString("BT /F1 12 Tf ")
		for j, row := range rows {
			fmt.Fprintf(&stream, "1 0 0 1 72 %d Tm (%s) Tj ", 720-j*20, row)
		}
		stream.WriteString("ET")

		objects = append(objects,
			fmt.Sprintf(
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				contentID,
			),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", stream.Len(), stream.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestPDFPages(t *testing.T) {
	data := buildPDF([][]string{
		{"Quarterly report", "Revenue grew"},
		{"Second page"},
		nil,
	})

	pages, err := extract.NewPDF(discard(), 2).Pages(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, []string{"Quarterly report", "Revenue grew"}, pages[0])
	assert.Equal(t, []string{"Second page"}, pages[1])
	assert.Empty(t, pages[2])
}

func TestPDFExtractJoinsPages(t *testing.T) {
	data := buildPDF([][]string{{"a"}, {"b"}, {"c"}})
	doc := &extract.Document{Name: "abc.pdf", ContentType: extract.ContentTypePDF, Data: data}

	text, err := extract.FromPages(extract.NewPDF(discard(), 0)).Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "a \nb \nc \n", text)
}

func TestPDFMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("just some words that are not a pdf document at all, padded out to exceed one hundred bytes of input")},
		{"truncated", buildPDF([][]string{{"a"}})[:60]},
		{"header only", []byte("%PDF-1.4\n%%EOF\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract.NewPDF(discard(), 1).Pages(context.Background(), tt.data)
			assert.ErrorIs(t, err, extract.ErrDecode)
		})
	}
}

func TestPDFCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extract.NewPDF(discard(), 1).Pages(ctx, buildPDF([][]string{{"a"}, {"b"}}))
	assert.ErrorIs(t, err, context.Canceled)
}
