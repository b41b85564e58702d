package fine

import (
	"context"

	fineRepo "finehero/database/repository/fine"
	"finehero/models"
	"finehero/services/ocr"
	"finehero/services/storage"
	"finehero/services/tasks"
)

// FineService owns the fine lifecycle from upload to extraction.
type FineService interface {
	// Upload stores the notice file, creates the fine and enqueues processing.
	Upload(ctx context.Context, userID, localPath, fileName, mimeType string) (*models.Fine, error)
	// Process runs the OCR + extraction pipeline; it is the worker entrypoint.
	Process(ctx context.Context, fineID string) error
	// FailTerminal marks a fine failed once the queue gives up retrying.
	FailTerminal(ctx context.Context, fineID, reason string) error
	GetByID(userID, id string) (*models.Fine, error)
	ListByUser(userID string) ([]models.Fine, error)
	// Correct applies manual fixes to extracted fields.
	Correct(userID, id string, corr models.FineCorrection) (*models.Fine, error)
	Delete(ctx context.Context, userID, id string) error
	// FileURL returns a short-lived signed URL for the stored notice.
	FileURL(ctx context.Context, userID, id string) (string, error)

	// Admin.
	ListByStatus(status string) ([]models.Fine, error)
}

// DefaultFineService is the production implementation.
type DefaultFineService struct {
	Repo     fineRepo.FineRepository
	Storage  storage.StorageService
	Pipeline *ocr.Pipeline
	Tasks    tasks.Enqueuer
	TempDir  string
}
