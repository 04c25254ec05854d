package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
)

func newTestExtractor(maxBytes int64) *Extractor {
	return New(maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Hello</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">world </w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:br/><w:t>line</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>A1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B1</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p/>
</w:body>
</w:document>`

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Study of Things</dc:title>
<dc:creator>Ada Lovelace</dc:creator>
</cp:coreProperties>`

func buildDOCX(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildPDF writes a one page PDF with a correct cross-reference table.
func buildPDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Title (Study of Things) /Author (Ada Lovelace) >>",
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
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		upload  document.Upload
		want    string
		format  document.Format
		wantErr string
	}{
		{
			name:   "utf-8",
			upload: document.Upload{Filename: "notes.TXT", Content: []byte("Grüße aus Zürich")},
			want:   "Grüße aus Zürich",
			format: document.FormatText,
		},
		{
			name:   "byte order mark",
			upload: document.Upload{Filename: "bom.txt", Content: append([]byte{0xEF, 0xBB, 0xBF}, "plain"...)},
			want:   "plain",
			format: document.FormatText,
		},
		{
			name:   "latin-1 fallback",
			upload: document.Upload{Filename: "legacy.txt", Content: []byte{'c', 'a', 'f', 0xE9}},
			want:   "café",
			format: document.FormatText,
		},
		{
			name:    "unsupported extension",
			upload:  document.Upload{Filename: "data.csv", Content: []byte("a,b")},
			wantErr: document.CodeUnsupportedFormat,
		},
		{
			name:    "whitespace only",
			upload:  document.Upload{Filename: "blank.txt", Content: []byte(" \n\t ")},
			wantErr: document.CodeExtractionFailure,
		},
		{
			name:    "pdf extension without pdf content",
			upload:  document.Upload{Filename: "fake.pdf", Content: []byte("just text")},
			wantErr: document.CodeExtractionFailure,
		},
		{
			name:    "corrupt pdf",
			upload:  document.Upload{Filename: "broken.pdf", Content: []byte("%PDF-1.4\n garbage without xref")},
			wantErr: document.CodeExtractionFailure,
		},
		{
			name:    "docx that is not a zip",
			upload:  document.Upload{Filename: "old.doc", Content: []byte{0xD0, 0xCF, 0x11, 0xE0}},
			wantErr: document.CodeExtractionFailure,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := newTestExtractor(0).Extract(context.Background(), tt.upload)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.True(t, apperrors.IsCode(err, tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, doc.Text)
			require.Equal(t, tt.format, doc.Format)
			require.Equal(t, document.NoMetadata{}, doc.Metadata)
			require.Equal(t, int64(len(tt.upload.Content)), doc.Size)
		})
	}
}

func TestExtractRejectsOversizedUploads(t *testing.T) {
	_, err := newTestExtractor(4).Extract(context.Background(), document.Upload{Filename: "a.txt", Content: []byte("too long")})
	require.True(t, apperrors.IsCode(err, domain.CodeInvalidInput))
}

func TestExtractDOCX(t *testing.T) {
	content := buildDOCX(t, map[string]string{
		"word/document.xml": testDocumentXML,
		"docProps/core.xml": testCoreXML,
	})

	doc, err := newTestExtractor(0).Extract(context.Background(), document.Upload{Filename: "paper.docx", Content: content})
	require.NoError(t, err)
	require.Equal(t, document.FormatDOCX, doc.Format)
	require.Equal(t, "Hello\tworld \nSecond\nline\n\nA1 B1 \n", doc.Text)

	meta, ok := doc.Metadata.(document.DOCXMetadata)
	require.True(t, ok)
	require.Equal(t, 3, meta.Paragraphs)
	require.Equal(t, 1, meta.Tables)
	require.Equal(t, "Study of Things", meta.Title)
	require.Equal(t, "Ada Lovelace", meta.Author)
}

func TestParseDocumentXMLKeepsParagraphAroundTextBoxes(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"
 xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:v="urn:schemas-microsoft-com:vml">
<w:body>
<w:p><w:r><w:t xml:space="preserve">Before </w:t></w:r><w:r><w:pict><v:shape><w:txbxContent><w:p><w:r><w:t>Box</w:t></w:r></w:p></w:txbxContent></v:shape></w:pict></w:r><w:r><w:t>After</w:t></w:r></w:p>
<w:p><w:r><mc:AlternateContent><mc:Choice><w:drawing><a:graphic><a:p><a:t>Shape</a:t></a:p><wps:txbx><w:txbxContent><w:p><w:r><w:t>Modern</w:t></w:r></w:p></w:txbxContent></wps:txbx></a:graphic></w:drawing></mc:Choice><mc:Fallback><w:pict><w:txbxContent><w:p><w:r><w:t>Legacy</w:t></w:r></w:p></w:txbxContent></w:pict></mc:Fallback></mc:AlternateContent></w:r><w:r><w:t>Next</w:t></w:r></w:p>
</w:body>
</w:document>`

	parsed, err := parseDocumentXML([]byte(body))
	require.NoError(t, err)
	require.Equal(t, []string{"Before After", "Next"}, parsed.paragraphs)
	require.Equal(t, "Before After\nNext\n", parsed.text())
}

func TestExtractDOCXWithoutCoreProperties(t *testing.T) {
	content := buildDOCX(t, map[string]string{"word/document.xml": testDocumentXML})

	doc, err := newTestExtractor(0).Extract(context.Background(), document.Upload{Filename: "paper.docx", Content: content})
	require.NoError(t, err)
	meta := doc.Metadata.(document.DOCXMetadata)
	require.Empty(t, meta.Title)

	info := document.Describe(doc)
	require.Equal(t, "Unknown", info.Title)
}

func TestExtractDOCXMissingBody(t *testing.T) {
	content := buildDOCX(t, map[string]string{"docProps/core.xml": testCoreXML})

	_, err := newTestExtractor(0).Extract(context.Background(), document.Upload{Filename: "paper.docx", Content: content})
	require.True(t, apperrors.IsCode(err, document.CodeExtractionFailure))
}

func TestExtractPDF(t *testing.T) {
	doc, err := newTestExtractor(0).Extract(context.Background(), document.Upload{Filename: "paper.pdf", Content: buildPDF("Hello PDF")})
	require.NoError(t, err)
	require.Equal(t, document.FormatPDF, doc.Format)
	require.Contains(t, doc.Text, "Hello")
	require.Contains(t, doc.MimeType, "application/pdf")

	meta, ok := doc.Metadata.(document.PDFMetadata)
	require.True(t, ok)
	require.Equal(t, 1, meta.Pages)
	require.Equal(t, "Study of Things", meta.Title)
	require.Equal(t, "Ada Lovelace", meta.Author)
}

func TestExtractMarkdown(t *testing.T) {
	source := "# Results\n\nWe observed *strong* gains with [Go](https://go.dev) &amp; friends.\n\n\n\n- first item\n- second item\n"

	doc, err := newTestExtractor(0).Extract(context.Background(), document.Upload{Filename: "README.md", Content: []byte(source)})
	require.NoError(t, err)
	require.Equal(t, document.FormatMarkdown, doc.Format)
	require.True(t, strings.HasPrefix(doc.Text, "Results"))
	require.Contains(t, doc.Text, "We observed strong gains with Go & friends.")
	require.Contains(t, doc.Text, "first item")
	require.NotContains(t, doc.Text, "<")
	require.NotContains(t, doc.Text, "*")
	require.NotContains(t, doc.Text, "\n\n\n")
}

func TestExtractHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(0).Extract(ctx, document.Upload{Filename: "a.txt", Content: []byte("text")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeTextOrder(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	text, err := decodeText([]byte{0x93, 'q', 0x94}, log)
	require.NoError(t, err)
	require.Equal(t, "\u0093q\u0094", text)
}
