package ocr

import (
	"context"

	"finehero/models"
)

// Engine extracts text from one document file.
type Engine interface {
	// Name identifies the engine in stored results.
	Name() string
	// CanHandle reports whether the engine accepts this MIME type.
	CanHandle(mimeType string) bool
	// Extract runs the engine over the file at path.
	Extract(ctx context.Context, path string) (*models.OCRResult, error)
}
