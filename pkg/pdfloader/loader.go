package pdfloader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
)

// minPageChars is the cleaned-text threshold below which a page is
// treated as empty (image-only scans mostly).
const minPageChars = 10

var (
	hyphenBreak = regexp.MustCompile(`-\r?\n`)
	lineBreak   = regexp.MustCompile(`\r?\n`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// TextUnit is one extracted piece of document text, page-granular for
// directory loads and document-granular for single-file loads.
type TextUnit struct {
	Content string
	Source  string
	Page    int
}

// CleanText normalizes raw extracted page text: hyphenated line breaks
// are joined, remaining line breaks become spaces, whitespace runs
// collapse to one space, and the result is trimmed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = hyphenBreak.ReplaceAllString(text, "")
	text = lineBreak.ReplaceAllString(text, " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

type Loader struct {
	log logger.ILogger
}

func NewLoader(log logger.ILogger) *Loader {
	return &Loader{log: log}
}

// LoadDirectory extracts every PDF in dir into page-level text units.
// Pages with fewer than minPageChars cleaned characters are dropped.
// Unreadable files are logged and skipped; they never abort the batch.
func (l *Loader) LoadDirectory(dir string) ([]TextUnit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var units []TextUnit
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		pages, err := extractPages(path)
		if err != nil {
			l.log.Warn("pdfloader", "skipping unreadable PDF", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}

		kept := 0
		for i, raw := range pages {
			cleaned := CleanText(raw)
			if len(cleaned) < minPageChars {
				continue
			}
			units = append(units, TextUnit{
				Content: cleaned,
				Source:  entry.Name(),
				Page:    i + 1,
			})
			kept++
		}
		if kept == 0 {
			l.log.Warn("pdfloader", "PDF contributed no text, likely image-only", map[string]interface{}{
				"file": entry.Name(),
			})
		}
	}
	return units, nil
}

// LoadFile extracts one PDF as a single text unit covering the whole
// document (page=1). Any extraction failure yields an empty result
// rather than an error: the admin ingestion path treats an unreadable
// upload as "nothing to index".
func (l *Loader) LoadFile(path string) []TextUnit {
	pages, err := extractPages(path)
	if err != nil {
		l.log.Warn("pdfloader", "single-file extraction failed", map[string]interface{}{
			"file":  filepath.Base(path),
			"error": err.Error(),
		})
		return nil
	}

	var sb strings.Builder
	for _, raw := range pages {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sb.WriteString(raw)
		sb.WriteString(" ")
	}

	cleaned := CleanText(sb.String())
	if cleaned == "" {
		return nil
	}
	return []TextUnit{{Content: cleaned, Source: filepath.Base(path), Page: 1}}
}

// extractPages returns the raw text of every page. The pdf package can
// panic on malformed content streams, so the recover converts those
// into ordinary errors.
func extractPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single bad page should not discard the rest.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
