package fine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"finehero/models"
	"finehero/services/extraction"
	"finehero/services/tasks"
	"finehero/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const noticeFolder = "finehero/notices"

// downloadURLTTL covers the worker's fetch window; user-facing URLs get the
// same lifetime.
const downloadURLTTL = 15 * time.Minute

var acceptedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
	"image/webp":      true,
}

// Upload stores the notice in Cloudinary, records the fine as uploaded and
// enqueues the processing task. The local file is the caller's to clean up.
func (s *DefaultFineService) Upload(ctx context.Context, userID, localPath, fileName, mimeType string) (*models.Fine, error) {
	logger := utils.GetLogger()

	if !acceptedMimeTypes[mimeType] {
		return nil, fmt.Errorf("unsupported file type %q", mimeType)
	}

	fileID, err := s.Storage.UploadFile(ctx, localPath, noticeFolder)
	if err != nil {
		return nil, fmt.Errorf("store notice file: %w", err)
	}

	now := time.Now()
	fine := &models.Fine{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    models.FineStatusUploaded,
		FileID:    fileID,
		FileName:  fileName,
		MimeType:  mimeType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(fine); err != nil {
		if delErr := s.Storage.DeleteFile(ctx, fileID); delErr != nil {
			logger.Warn("fine: failed to clean up orphaned file",
				zap.String("fileId", fileID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create fine record: %w", err)
	}

	task, opts, err := tasks.NewFineProcessTask(fine.ID)
	if err != nil {
		return nil, fmt.Errorf("build processing task: %w", err)
	}
	if _, err := s.Tasks.Enqueue(task, opts...); err != nil {
		// The fine stays uploaded; the user can retry via re-upload or an
		// admin can requeue.
		logger.Error("fine: failed to enqueue processing",
			zap.String("fineId", fine.ID), zap.Error(err))
		return nil, fmt.Errorf("enqueue processing: %w", err)
	}

	logger.Info("fine: uploaded",
		zap.String("fineId", fine.ID), zap.String("userId", userID),
		zap.String("mimeType", mimeType))
	return fine, nil
}

// Process runs OCR and field extraction for a fine. It is idempotent: an
// already extracted fine is left untouched. A returned error signals the
// queue to retry; unrecoverable document problems mark the fine failed and
// return nil instead.
func (s *DefaultFineService) Process(ctx context.Context, fineID string) error {
	logger := utils.GetLogger()

	fine, err := s.Repo.GetByID(fineID)
	if err != nil {
		return fmt.Errorf("load fine %s: %w", fineID, err)
	}
	if fine.Status == models.FineStatusExtracted {
		logger.Debug("fine: already extracted, skipping", zap.String("fineId", fineID))
		return nil
	}

	if err := s.Repo.SetStatus(fineID, models.FineStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark fine processing: %w", err)
	}

	localPath, err := s.fetchToTemp(ctx, fine)
	if err != nil {
		return fmt.Errorf("fetch notice file: %w", err)
	}
	defer os.Remove(localPath)

	ocrResult, err := s.Pipeline.Extract(ctx, localPath, fine.MimeType)
	if err != nil {
		// OCR exhaustion is terminal for this document, not transient.
		reason := ocrFailureReason(fine.MimeType)
		if setErr := s.Repo.SetStatus(fineID, models.FineStatusFailed, reason); setErr != nil {
			return fmt.Errorf("mark fine failed: %w", setErr)
		}
		logger.Warn("fine: OCR failed",
			zap.String("fineId", fineID), zap.Error(err))
		return nil
	}

	data := extraction.Extract(ocrResult.Text)

	update := bson.M{
		"status":    models.FineStatusExtracted,
		"ocr":       ocrResult,
		"extracted": data,
		"updatedAt": time.Now(),
	}
	if err := s.Repo.UpdateSetDocument(fineID, update); err != nil {
		return fmt.Errorf("store extraction result: %w", err)
	}

	logger.Info("fine: extracted",
		zap.String("fineId", fineID),
		zap.String("engine", ocrResult.Engine),
		zap.Float64("confidence", data.Confidence),
		zap.Bool("needsReview", data.NeedsReview))
	return nil
}

// FailTerminal is called by the worker when processing retries are exhausted.
// The fine must not stay in processing forever, so it is marked failed with a
// recorded reason. An extracted fine is left alone: a late retry of an old
// task must not undo a successful run.
func (s *DefaultFineService) FailTerminal(ctx context.Context, fineID, reason string) error {
	fine, err := s.Repo.GetByID(fineID)
	if err != nil {
		return fmt.Errorf("load fine %s: %w", fineID, err)
	}
	if fine.Status == models.FineStatusExtracted || fine.Status == models.FineStatusFailed {
		return nil
	}
	if err := s.Repo.SetStatus(fineID, models.FineStatusFailed, reason); err != nil {
		return fmt.Errorf("mark fine failed: %w", err)
	}
	utils.GetLogger().Warn("fine: processing abandoned after retries",
		zap.String("fineId", fineID), zap.String("reason", reason))
	return nil
}

func ocrFailureReason(mimeType string) string {
	if mimeType == "application/pdf" {
		return "could not read text from this PDF; if it is a scan, please upload a clear photo of the notice instead"
	}
	return "could not recognize usable text in the image; please upload a sharper, well-lit photo"
}

// fetchToTemp downloads the stored notice into the service temp dir so the
// OCR engines can read it from disk. Workers may run on a different host than
// the one that accepted the upload.
func (s *DefaultFineService) fetchToTemp(ctx context.Context, fine *models.Fine) (string, error) {
	resourceType := "image"
	ext := ".png"
	switch fine.MimeType {
	case "application/pdf":
		resourceType = "raw"
		ext = ".pdf"
	case "image/jpeg":
		ext = ".jpg"
	case "image/tiff":
		ext = ".tif"
	case "image/webp":
		ext = ".webp"
	}

	url, err := s.Storage.GetSecureDownloadURL(ctx, resourceType, fine.FileID, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("sign download URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	tmpDir := s.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	out, err := os.CreateTemp(tmpDir, "notice-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return filepath.Clean(out.Name()), nil
}

// GetByID returns the fine only to its owner.
func (s *DefaultFineService) GetByID(userID, id string) (*models.Fine, error) {
	fine, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if fine.UserID != userID {
		return nil, fmt.Errorf("fine not found")
	}
	return fine, nil
}

func (s *DefaultFineService) ListByUser(userID string) ([]models.Fine, error) {
	return s.Repo.GetByUser(userID)
}

func (s *DefaultFineService) ListByStatus(status string) ([]models.Fine, error) {
	return s.Repo.GetByStatus(status)
}

// Correct applies manual field fixes to an extracted fine. Corrected fields
// get full confidence and the overall score is recomputed.
func (s *DefaultFineService) Correct(userID, id string, corr models.FineCorrection) (*models.Fine, error) {
	fine, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if fine.Status != models.FineStatusExtracted {
		return nil, fmt.Errorf("fine is not extracted yet")
	}

	data := fine.Extracted
	if data == nil {
		data = &models.FineData{}
	}
	if data.FieldConfidence == nil {
		data.FieldConfidence = map[string]float64{}
	}

	applied := false
	setField := func(name string, assign func()) {
		assign()
		data.FieldConfidence[name] = 1.0
		applied = true
	}
	if corr.NoticeNumber != nil {
		setField("noticeNumber", func() { data.NoticeNumber = *corr.NoticeNumber })
	}
	if corr.Article != nil {
		setField("article", func() { data.Article = *corr.Article })
	}
	if corr.Date != nil {
		if _, err := time.Parse("2006-01-02", *corr.Date); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *corr.Date)
		}
		setField("date", func() { data.Date = *corr.Date })
	}
	if corr.Time != nil {
		if _, err := time.Parse("15:04", *corr.Time); err != nil {
			return nil, fmt.Errorf("invalid time %q, expected HH:MM", *corr.Time)
		}
		setField("time", func() { data.Time = *corr.Time })
	}
	if corr.Location != nil {
		setField("location", func() { data.Location = *corr.Location })
	}
	if corr.Plate != nil {
		setField("plate", func() { data.Plate = *corr.Plate })
	}
	if corr.AmountCents != nil {
		if *corr.AmountCents <= 0 {
			return nil, fmt.Errorf("amount must be positive")
		}
		setField("amount", func() { data.AmountCents = *corr.AmountCents })
	}
	if corr.Authority != nil {
		setField("authority", func() { data.Authority = *corr.Authority })
	}
	if !applied {
		return fine, nil
	}

	extraction.Rescore(data)

	update := bson.M{
		"extracted": data,
		"updatedAt": time.Now(),
	}
	if err := s.Repo.UpdateSetDocument(id, update); err != nil {
		return nil, fmt.Errorf("store correction: %w", err)
	}
	fine.Extracted = data
	return fine, nil
}

// Delete removes the fine record and its stored file.
func (s *DefaultFineService) Delete(ctx context.Context, userID, id string) error {
	fine, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	if fine.FileID != "" {
		if err := s.Storage.DeleteFile(ctx, fine.FileID); err != nil {
			utils.GetLogger().Warn("fine: failed to delete stored file",
				zap.String("fineId", id), zap.String("fileId", fine.FileID), zap.Error(err))
		}
	}
	return nil
}

// FileURL signs a short-lived download URL for the fine's original document.
func (s *DefaultFineService) FileURL(ctx context.Context, userID, id string) (string, error) {
	fine, err := s.GetByID(userID, id)
	if err != nil {
		return "", err
	}
	resourceType := "image"
	if fine.MimeType == "application/pdf" {
		resourceType = "raw"
	}
	return s.Storage.GetSecureDownloadURL(ctx, resourceType, fine.FileID, downloadURLTTL)
}
