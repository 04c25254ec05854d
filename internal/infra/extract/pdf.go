package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
)

func extractPDF(ctx context.Context, content []byte, log *slog.Logger) (text string, meta document.PDFMetadata, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", meta, fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", meta, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", meta, fmt.Errorf("read page %d: %w", i, err)
		}
		b.WriteString(pageText)
		log.Debug("processed pdf page", "page", i, "pages", pages)
	}

	info := reader.Trailer().Key("Info")
	meta = document.PDFMetadata{
		Pages:  pages,
		Title:  strings.TrimSpace(info.Key("Title").Text()),
		Author: strings.TrimSpace(info.Key("Author").Text()),
	}
	return b.String(), meta, nil
}
