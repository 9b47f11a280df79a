package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxNoteTextLen bounds extracted note text; analyst notes beyond this
// add nothing to keyword extraction.
const maxNoteTextLen = 50000

// ExtractNoteText extracts plain text from an uploaded PDF analyst note.
func (s *Service) ExtractNoteText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var sb strings.Builder
	totalPages := reader.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")

		if sb.Len() > maxNoteTextLen {
			break
		}
	}

	result := sb.String()
	if len(result) > maxNoteTextLen {
		result = result[:maxNoteTextLen]
	}

	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("no extractable text in PDF")
	}

	return result, nil
}
