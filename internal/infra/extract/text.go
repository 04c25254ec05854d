package extract

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type textEncoding struct {
	name   string
	decode func([]byte) (string, bool)
}

// textEncodings are tried in order until one decodes the input.
var textEncodings = []textEncoding{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: charmapDecoder(charmap.ISO8859_1)},
	{name: "windows-1252", decode: charmapDecoder(charmap.Windows1252)},
	{name: "iso-8859-1", decode: charmapDecoder(charmap.ISO8859_1)},
}

var errUndecodable = errors.New("content could not be decoded with any supported encoding")

var blankLines = regexp.MustCompile(`\n\s*\n`)

func decodeUTF8(b []byte) (string, bool) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(b []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}

func decodeText(content []byte, log *slog.Logger) (string, error) {
	for _, enc := range textEncodings {
		if text, ok := enc.decode(content); ok {
			log.Debug("decoded text", "encoding", enc.name)
			return text, nil
		}
	}
	return "", errUndecodable
}

func extractText(content []byte, log *slog.Logger) (string, error) {
	return decodeText(content, log)
}

// extractMarkdown renders markdown to HTML and keeps only the text nodes.
func extractMarkdown(content []byte, log *slog.Logger) (string, error) {
	source, err := decodeText(content, log)
	if err != nil {
		return "", err
	}
	html := markdown.ToHTML([]byte(source), nil, nil)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", err
	}
	text := blankLines.ReplaceAllString(doc.Text(), "\n\n")
	return strings.TrimSpace(text), nil
}
