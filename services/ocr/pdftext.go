package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finehero/models"

	"github.com/ledongthuc/pdf"
)

// PDFTextEngine reads the native text layer of a PDF (tier 1).
type PDFTextEngine struct{}

func NewPDFTextEngine() *PDFTextEngine {
	return &PDFTextEngine{}
}

func (e *PDFTextEngine) Name() string { return "pdftext" }

func (e *PDFTextEngine) CanHandle(mimeType string) bool {
	return mimeType == "application/pdf"
}

// Extract pulls per-page plain text from the PDF's content streams.
func (e *PDFTextEngine) Extract(ctx context.Context, path string) (*models.OCRResult, error) {
	start := time.Now()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdftext: open %s: %w", path, err)
	}
	defer f.Close()

	var pages []models.PageText
	var merged strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not sink the document.
			continue
		}
		pages = append(pages, models.PageText{Page: i, Text: text})
		merged.WriteString(text)
		merged.WriteString("\n")
	}

	text := merged.String()
	return &models.OCRResult{
		Engine:     e.Name(),
		Tier:       1,
		Score:      QualityScore(text),
		Pages:      pages,
		Text:       text,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
