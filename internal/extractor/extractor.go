// Package extractor converts raw document files (PDF, HTML, plain text) into
// normalized plain text. Extraction is best-effort: every failure is logged
// and degrades to empty text so one bad file never aborts an ingestion run.
package extractor

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// Extractor dispatches on file extension. Unsupported types yield empty text,
// not an error, so callers can skip them gracefully.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{
		logger: slog.Default().With("component", "extractor"),
	}
}

// Extract returns the plain text of the file at path.
func (e *Extractor) Extract(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".htm", ".html":
		return e.extractHTML(path)
	case ".txt":
		return e.extractTXT(path)
	default:
		e.logger.Warn("unsupported file type", "path", path)
		return ""
	}
}

// extractPDF concatenates the text of each page in order. A page that fails
// to extract contributes nothing; the rest of the document still goes
// through.
func (e *Extractor) extractPDF(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("failed to open pdf", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		text := e.extractPage(reader, i, path)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// extractPage isolates per-page failures; the pdf library panics on some
// malformed content streams.
func (e *Extractor) extractPage(reader *pdf.Reader, num int, path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf page extraction panicked", "path", path, "page", num, "panic", r)
			text = ""
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		e.logger.Warn("pdf page extraction failed", "path", path, "page", num, "error", err)
		return ""
	}
	return text
}

// extractHTML strips script/style/head/meta/link elements and all tags,
// keeping only text content joined with single spaces.
func (e *Extractor) extractHTML(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("failed to read html", "path", path, "error", err)
		return ""
	}
	content := decodeWithFallback(data)

	skip := map[string]bool{
		"script": true, "style": true, "head": true, "noscript": true,
	}

	var parts []string
	depth := 0
	tokenizer := html.NewTokenizer(strings.NewReader(content))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skip[string(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skip[string(name)] && depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth > 0 {
				continue
			}
			if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}

func (e *Extractor) extractTXT(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("failed to read txt", "path", path, "error", err)
		return ""
	}
	return decodeWithFallback(data)
}

// decodeWithFallback tries UTF-8, then Windows-1252, then Latin-1, and as a
// last resort drops invalid bytes.
func decodeWithFallback(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(decoded)
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(data), "")
}
