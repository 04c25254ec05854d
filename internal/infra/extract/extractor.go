package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
)

// Extractor turns uploads into Documents, dispatching on the file extension.
type Extractor struct {
	maxBytes int64
	logger   *slog.Logger
}

// New constructs an Extractor. maxBytes <= 0 disables the size check.
func New(maxBytes int64, logger *slog.Logger) *Extractor {
	return &Extractor{maxBytes: maxBytes, logger: logger.With("component", "extractor")}
}

// Extract implements the summarizer Extractor.
func (e *Extractor) Extract(ctx context.Context, upload document.Upload) (document.Document, error) {
	format, ok := document.FormatFromFilename(upload.Filename)
	if !ok {
		ext := document.Extension(upload.Filename)
		e.logger.Warn("unsupported file type", "file", upload.Filename, "extension", ext)
		return document.Document{}, apperrors.Wrap(document.CodeUnsupportedFormat, fmt.Sprintf("unsupported file type: %s", ext), nil)
	}
	size := int64(len(upload.Content))
	if e.maxBytes > 0 && size > e.maxBytes {
		return document.Document{}, apperrors.Wrap(domain.CodeInvalidInput,
			fmt.Sprintf("file is %s, larger than the %s limit", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(e.maxBytes))), nil)
	}
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	mime := mimetype.Detect(upload.Content)
	log := e.logger.With("file", upload.Filename, "format", format, "mime", mime.String())
	log.Info("extracting text", "size", humanize.IBytes(uint64(size)))

	var (
		text string
		meta document.Metadata = document.NoMetadata{}
		err  error
	)
	switch format {
	case document.FormatPDF:
		if !mime.Is("application/pdf") {
			err = fmt.Errorf("content is %s, not a PDF", mime.String())
			break
		}
		var pdfMeta document.PDFMetadata
		text, pdfMeta, err = extractPDF(ctx, upload.Content, log)
		meta = pdfMeta
	case document.FormatDOCX:
		var docxMeta document.DOCXMetadata
		text, docxMeta, err = extractDOCX(upload.Content, log)
		meta = docxMeta
	case document.FormatText:
		text, err = extractText(upload.Content, log)
	case document.FormatMarkdown:
		text, err = extractMarkdown(upload.Content, log)
	}
	if err != nil {
		log.Error("text extraction failed", "error", err)
		return document.Document{}, apperrors.Wrap(document.CodeExtractionFailure, fmt.Sprintf("failed to extract text from %s", upload.Filename), err)
	}
	if strings.TrimSpace(text) == "" {
		return document.Document{}, apperrors.Wrap(document.CodeExtractionFailure, fmt.Sprintf("no text found in %s", upload.Filename), nil)
	}

	doc := document.Document{
		Filename: upload.Filename,
		Size:     size,
		Format:   format,
		MimeType: mime.String(),
		Text:     text,
		Metadata: meta,
	}
	log.Info("text extracted", "characters", doc.Characters())
	return doc, nil
}

var _ domain.Extractor = (*Extractor)(nil)
