package document

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Error codes produced while turning an upload into a Document.
const (
	CodeUnsupportedFormat = "unsupported_format"
	CodeExtractionFailure = "extraction_failure"
)

// Format tags the source format inferred from the upload's file extension.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
)

var extensionFormats = map[string]Format{
	"pdf":      FormatPDF,
	"doc":      FormatDOCX,
	"docx":     FormatDOCX,
	"txt":      FormatText,
	"md":       FormatMarkdown,
	"markdown": FormatMarkdown,
}

// SupportedExtensions lists the accepted file extensions in display order.
func SupportedExtensions() []string {
	return []string{"pdf", "doc", "docx", "txt", "md", "markdown"}
}

// Extension returns the lowercase text after the last dot of name, or the whole
// lowercased name when it has no dot.
func Extension(name string) string {
	name = strings.ToLower(strings.TrimSpace(filepath.Base(name)))
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// FormatFromFilename resolves the Format for a file name.
func FormatFromFilename(name string) (Format, bool) {
	format, ok := extensionFormats[Extension(name)]
	return format, ok
}

// Upload is the raw payload handed to the extractor.
type Upload struct {
	Filename string
	Content  []byte
}

// Document is the extracted, immutable form of an upload.
type Document struct {
	Filename string
	Size     int64
	Format   Format
	MimeType string
	Text     string
	Metadata Metadata
}

// Characters counts the runes of the extracted text.
func (d Document) Characters() int {
	return utf8.RuneCountInString(d.Text)
}

// SummaryFilename derives "<stem>_summary.txt" from the original file name.
func SummaryFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base + "_summary.txt"
}
