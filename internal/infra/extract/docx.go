package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
)

const (
	docxBody = "word/document.xml"
	docxCore = "docProps/core.xml"

	wordNS   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	markupNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

type docxContent struct {
	paragraphs []string
	tables     [][][]string
}

// text renders body paragraphs one per line, then every table row with its
// cells separated by spaces.
func (c docxContent) text() string {
	var b strings.Builder
	for _, p := range c.paragraphs {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	for _, table := range c.tables {
		for _, row := range table {
			for _, cell := range row {
				b.WriteString(cell)
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type coreProperties struct {
	Title   string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator string `xml:"http://purl.org/dc/elements/1.1/ creator"`
}

func extractDOCX(content []byte, log *slog.Logger) (string, document.DOCXMetadata, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", document.DOCXMetadata{}, fmt.Errorf("open docx archive: %w", err)
	}

	body, err := readZipEntry(archive, docxBody)
	if err != nil {
		return "", document.DOCXMetadata{}, err
	}
	parsed, err := parseDocumentXML(body)
	if err != nil {
		return "", document.DOCXMetadata{}, fmt.Errorf("parse %s: %w", docxBody, err)
	}
	if len(parsed.tables) > 0 {
		log.Debug("extracted docx tables", "tables", len(parsed.tables))
	}

	meta := document.DOCXMetadata{
		Paragraphs: len(parsed.paragraphs),
		Tables:     len(parsed.tables),
	}
	if core, err := readZipEntry(archive, docxCore); err == nil {
		var props coreProperties
		if err := xml.Unmarshal(core, &props); err != nil {
			log.Warn("could not read docx core properties", "error", err)
		} else {
			meta.Title = strings.TrimSpace(props.Title)
			meta.Author = strings.TrimSpace(props.Creator)
		}
	}
	return parsed.text(), meta, nil
}

func readZipEntry(archive *zip.Reader, name string) ([]byte, error) {
	f, err := archive.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseDocumentXML walks word/document.xml collecting run text. Paragraphs
// inside tables belong to their cell; nested tables fold into the outer cell.
// Text box content and compatibility fallbacks are skipped, so the enclosing
// paragraph keeps its own runs only.
func parseDocumentXML(data []byte) (docxContent, error) {
	var (
		out        docxContent
		dec        = xml.NewDecoder(bytes.NewReader(data))
		para       strings.Builder
		inPara     bool
		inRun      bool
		inText     bool
		tableDepth int
		row        []string
		cell       []string
		table      [][]string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return docxContent{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skipSubtree(t.Name) {
				if err := dec.Skip(); err != nil {
					return docxContent{}, err
				}
				continue
			}
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				para.Reset()
			case "r":
				inRun = inPara
			case "t":
				inText = inRun
			case "tab":
				if inRun {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					para.WriteByte('\n')
				}
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell = nil
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				inRun = false
			case "p":
				inPara = false
				if tableDepth == 0 {
					out.paragraphs = append(out.paragraphs, para.String())
				} else {
					cell = append(cell, para.String())
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(cell, "\n"))
				}
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
				}
			case "tbl":
				if tableDepth == 1 {
					out.tables = append(out.tables, table)
				}
				tableDepth--
			}
		}
	}
	return out, nil
}

func skipSubtree(name xml.Name) bool {
	switch {
	case name.Space == wordNS && name.Local == "txbxContent":
		return true
	case name.Space == markupNS && name.Local == "Fallback":
		return true
	}
	return false
}
