package ingest

import (
	"fmt"
	"os"
	"strings"

	"draftdesk/internal/util"

	"github.com/ledongthuc/pdf"
)

// TextFromPDF extracts text page by page in page order and joins pages with
// a blank line. Pages that yield no text are kept out of the join so the
// separator stays a single blank line.
func TextFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		pageText = strings.TrimSpace(util.SanitizeText(pageText))
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

// TextFromFile reads any non-PDF input as raw text.
func TextFromFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return TextFromRaw(string(b)), nil
}

func TextFromRaw(text string) string {
	return strings.TrimSpace(util.SanitizeText(text))
}

func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
