// Package document turns uploaded files (PDFs and images) into gateway
// parts for timeline scanning. PDFs are reduced to per-page extracted text;
// images pass through for the model to read visually.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
)

const (
	// MaxScanPages limits how many PDF pages feed a single scan.
	MaxScanPages = 10

	// MaxImageBytes limits uploaded image size (8MB).
	MaxImageBytes = 8 * 1024 * 1024

	// MaxExtractedTextSize limits the total extracted text (1MB).
	MaxExtractedTextSize = 1024 * 1024
)

// ToParts converts one uploaded file into gateway parts. Unsupported
// content types are a validation error with an actionable message.
func ToParts(filename, contentType string, data []byte) ([]gateway.Part, error) {
	switch {
	case contentType == "application/pdf" || strings.HasPrefix(string(peek(data, 5)), "%PDF-"):
		return pdfParts(filename, data)
	case strings.HasPrefix(contentType, "image/"):
		if len(data) > MaxImageBytes {
			return nil, apperrors.Validationf("image %q is too large (max %d MB)", filename, MaxImageBytes/(1024*1024))
		}
		return []gateway.Part{gateway.ImagePart(contentType, data)}, nil
	default:
		return nil, apperrors.Validationf(
			"unsupported file type %q for %q: please upload a PDF or an image file (.jpg, .png, ...)",
			contentType, filename,
		)
	}
}

func pdfParts(filename string, data []byte) ([]gateway.Part, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "encrypted") {
			return nil, apperrors.Validationf("the PDF %q is password-protected: please provide a version without a password", filename)
		}
		return nil, apperrors.Validationf("could not process the PDF %q: it may be corrupted or in an unsupported format", filename)
	}

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return nil, apperrors.Validationf("the PDF %q has no pages", filename)
	}
	pagesToProcess := totalPages
	if pagesToProcess > MaxScanPages {
		pagesToProcess = MaxScanPages
	}

	var parts []gateway.Part
	total := 0
	for pageNum := 1; pageNum <= pagesToProcess; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages with extraction errors, don't fail the scan
			continue
		}
		cleaned := cleanText(text)
		if cleaned == "" {
			continue
		}
		if total+len(cleaned) > MaxExtractedTextSize {
			break
		}
		total += len(cleaned)
		parts = append(parts, gateway.TextPart(fmt.Sprintf("--- Page %d of %s ---\n%s", pageNum, filename, cleaned)))
	}

	if len(parts) == 0 {
		return nil, apperrors.Validationf("failed to extract any text from %q: the file might be scanned images only or corrupted", filename)
	}
	return parts, nil
}

func peek(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}

// cleanText strips null bytes and collapses runs of whitespace, keeping
// newlines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")

	var result strings.Builder
	lastWasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				if r == '\n' {
					result.WriteRune('\n')
					lastWasSpace = false
				} else {
					result.WriteRune(' ')
					lastWasSpace = true
				}
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(result.String())
}
