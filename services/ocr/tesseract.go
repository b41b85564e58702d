package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finehero/models"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text in photographed or scanned notices (tier 2).
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine creates the OCR fallback engine. languages follows the
// Tesseract convention, e.g. "por+eng".
func NewTesseractEngine(languages string) *TesseractEngine {
	if languages == "" {
		languages = "por+eng"
	}
	return &TesseractEngine{languages: strings.Split(languages, "+")}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) CanHandle(mimeType string) bool {
	switch mimeType {
	case "image/png", "image/jpeg", "image/tiff", "image/webp":
		return true
	}
	return false
}

// Extract runs Tesseract over the image file.
func (e *TesseractEngine) Extract(ctx context.Context, path string) (*models.OCRResult, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("tesseract: set image %s: %w", path, err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognize %s: %w", path, err)
	}

	return &models.OCRResult{
		Engine:     e.Name(),
		Tier:       2,
		Score:      QualityScore(text),
		Pages:      []models.PageText{{Page: 1, Text: text}},
		Text:       text,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
