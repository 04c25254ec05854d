package document

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const unknown = "Unknown"

// Info is the caller facing description of a document.
type Info struct {
	Name                    string `json:"name"`
	Size                    int64  `json:"size"`
	SizeLabel               string `json:"sizeLabel"`
	Type                    string `json:"type"`
	MimeType                string `json:"mimeType,omitempty"`
	Pages                   int    `json:"pages"`
	Title                   string `json:"title,omitempty"`
	Author                  string `json:"author,omitempty"`
	Characters              int    `json:"characters"`
	EstimatedProcessingTime string `json:"estimatedProcessingTime"`
}

// Describe summarizes doc for display.
func Describe(doc Document) Info {
	info := Info{
		Name:                    doc.Filename,
		Size:                    doc.Size,
		SizeLabel:               FormatSize(doc.Size),
		Type:                    strings.ToUpper(Extension(doc.Filename)),
		MimeType:                doc.MimeType,
		Characters:              doc.Characters(),
		EstimatedProcessingTime: EstimateProcessingTime(doc.Characters()),
	}
	switch meta := doc.Metadata.(type) {
	case PDFMetadata:
		info.Pages = meta.Pages
		info.Title = orUnknown(meta.Title)
		info.Author = orUnknown(meta.Author)
	case DOCXMetadata:
		info.Pages = meta.EstimatedPages()
		info.Title = orUnknown(meta.Title)
		info.Author = orUnknown(meta.Author)
	}
	return info
}

// FormatSize renders a byte count with 1024 based units.
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}

// EstimateProcessingTime assumes roughly one thousand characters per second.
func EstimateProcessingTime(chars int) string {
	seconds := float64(chars) / 1000
	if seconds < 60 {
		return fmt.Sprintf("~%d seconds", int(seconds))
	}
	return fmt.Sprintf("~%d minutes", int(seconds/60))
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return unknown
	}
	return strings.TrimSpace(value)
}
