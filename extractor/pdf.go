package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF decodes a PDF page by page. Pages that yield no text are
// skipped; the rest become "--- Page k ---" blocks separated by blank lines.
func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some malformed streams; keep that inside
	// the extractor contract.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var parts []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Some pages may fail to parse; skip them like empty pages
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i, pageText))
	}

	return strings.Join(parts, "\n\n"), nil
}
