package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

func newTestExtractor() *Extractor {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	n := len(pages)
	fontID := 3 + 2*n

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))

	for i, text := range pages {
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontID, 4+2*i))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)
	if documentXML != "" {
		w, err = zw.Create("word/document.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Cell biology</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">The mitochondria is </w:t></w:r><w:r><w:t>the powerhouse of the cell.</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Column</w:t><w:tab/><w:t>value</w:t></w:r></w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

// ===== TEXT =====

func TestExtract_Text(t *testing.T) {
	e := newTestExtractor()

	doc, err := e.Extract(context.Background(), []byte("\uFEFFPlain text body"), models.FormatTXT)
	require.NoError(t, err)

	assert.Equal(t, "Plain text body", doc.Content)
	assert.Equal(t, models.FormatTXT, doc.SourceFormat)
	assert.Equal(t, 1, doc.PageCount)
	assert.Len(t, doc.Hash, 64)
}

func TestExtract_TextInvalidUTF8(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract(context.Background(), []byte{'o', 'k', 0xff, 0xfe}, models.FormatTXT)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, models.FormatTXT, ee.Format)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestExtract_NormalizesLigatures(t *testing.T) {
	e := newTestExtractor()

	doc, err := e.Extract(context.Background(), []byte("ﬁnancial eﬃciency"), models.FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, "financial efficiency", doc.Content)
}

func TestNewDocument_HashIsStable(t *testing.T) {
	a := NewDocument("same content", models.FormatText)
	b := NewDocument("same content", models.FormatTXT)
	c := NewDocument("other content", models.FormatText)

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
}

// ===== DOCX =====

func TestExtract_DOCX(t *testing.T) {
	e := newTestExtractor()

	doc, err := e.Extract(context.Background(), buildDOCX(t, sampleDocument), models.FormatDOCX)
	require.NoError(t, err)

	assert.Equal(t, "Cell biology\nThe mitochondria is the powerhouse of the cell.\n\nColumn\tvalue", doc.Content)
	assert.Equal(t, models.FormatDOCX, doc.SourceFormat)
}

func TestExtract_DOCXErrors(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract(context.Background(), []byte("not a zip"), models.FormatDOCX)
	assert.True(t, IsExtractionError(err))

	_, err = e.Extract(context.Background(), buildDOCX(t, ""), models.FormatDOCX)
	assert.True(t, IsExtractionError(err))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = e.Extract(context.Background(), buildDOCX(t, "<w:document><w:body><w:p>"), models.FormatDOCX)
	assert.True(t, IsExtractionError(err))
}

// ===== PDF =====

func TestExtract_PDF(t *testing.T) {
	e := newTestExtractor()

	doc, err := e.Extract(context.Background(), buildPDF("Hello first page", "Hello second page"), models.FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	assert.Contains(t, doc.Content, "Hello first page")
	assert.Contains(t, doc.Content, "Hello second page")
	assert.Contains(t, doc.Content, pageSeparator)
	assert.Less(t, strings.Index(doc.Content, "first"), strings.Index(doc.Content, "second"))
}

func TestExtract_PDFCorrupt(t *testing.T) {
	e := newTestExtractor()

	for _, data := range [][]byte{nil, []byte("garbage bytes that are not a pdf"), buildPDF("x")[:40]} {
		_, err := e.Extract(context.Background(), data, models.FormatPDF)
		require.Error(t, err)
		assert.True(t, IsExtractionError(err), "got %v", err)
	}
}

// ===== FORMAT RESOLUTION =====

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        models.SourceFormat
		wantErr     bool
	}{
		{"pdf extension", "notes.PDF", "", models.FormatPDF, false},
		{"docx extension", "notes.docx", "application/octet-stream", models.FormatDOCX, false},
		{"txt extension", "notes.txt", "", models.FormatTXT, false},
		{"pdf mime", "upload", MIMEPDF, models.FormatPDF, false},
		{"docx mime", "", MIMEDOCX, models.FormatDOCX, false},
		{"text mime with charset", "blob", "text/plain; charset=utf-8", models.FormatTXT, false},
		{"unknown", "slides.pptx", "application/vnd.ms-powerpoint", "", true},
		{"nothing", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFormat(tt.fileName, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.True(t, IsExtractionError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFile(t *testing.T) {
	e := newTestExtractor()

	doc, err := e.ExtractFile(context.Background(), "chapter.txt", "", []byte("chapter text"))
	require.NoError(t, err)
	assert.Equal(t, "chapter.txt", doc.FileName)

	_, err = e.ExtractFile(context.Background(), "chapter.odt", "", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), []byte("x"), models.SourceFormat("rtf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor().Extract(ctx, []byte("text"), models.FormatTXT)
	assert.ErrorIs(t, err, context.Canceled)
}
