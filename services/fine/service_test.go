package fine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finehero/models"
	"finehero/services/ocr"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeFineRepo struct {
	fines map[string]*models.Fine
}

func newFakeFineRepo() *fakeFineRepo {
	return &fakeFineRepo{fines: map[string]*models.Fine{}}
}

func (r *fakeFineRepo) Create(f *models.Fine) error {
	cp := *f
	r.fines[f.ID] = &cp
	return nil
}

func (r *fakeFineRepo) UpdateSetDocument(id string, doc bson.M) error {
	f, ok := r.fines[id]
	if !ok {
		return fmt.Errorf("fine %s not found", id)
	}
	for k, v := range doc {
		switch k {
		case "status":
			f.Status = v.(string)
		case "ocr":
			f.OCR = v.(*models.OCRResult)
		case "extracted":
			f.Extracted = v.(*models.FineData)
		case "failureReason":
			f.FailureReason = v.(string)
		}
	}
	return nil
}

func (r *fakeFineRepo) Delete(id string) error {
	delete(r.fines, id)
	return nil
}

func (r *fakeFineRepo) GetByID(id string) (*models.Fine, error) {
	f, ok := r.fines[id]
	if !ok {
		return nil, fmt.Errorf("fine %s not found", id)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFineRepo) GetByUser(userID string) ([]models.Fine, error) {
	var out []models.Fine
	for _, f := range r.fines {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFineRepo) GetByStatus(status string) ([]models.Fine, error) {
	var out []models.Fine
	for _, f := range r.fines {
		if f.Status == status {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFineRepo) SetStatus(id, status, reason string) error {
	f, ok := r.fines[id]
	if !ok {
		return fmt.Errorf("fine %s not found", id)
	}
	f.Status = status
	f.FailureReason = reason
	return nil
}

type fakeStorage struct {
	url      string
	uploaded []string
	deleted  []string
}

func (s *fakeStorage) UploadFile(ctx context.Context, localPath, folder string) (string, error) {
	s.uploaded = append(s.uploaded, localPath)
	return "stored-id", nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

func (s *fakeStorage) GetSecureDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error) {
	return s.url, nil
}

type fakeEnqueuer struct {
	enqueued []string
	err      error
}

func (e *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.enqueued = append(e.enqueued, task.Type())
	return &asynq.TaskInfo{}, nil
}

type textEngine struct {
	text string
}

func (e *textEngine) Name() string          { return "text" }
func (e *textEngine) CanHandle(string) bool { return true }

func (e *textEngine) Extract(ctx context.Context, path string) (*models.OCRResult, error) {
	return &models.OCRResult{Engine: "text", Text: e.text, Score: ocr.QualityScore(e.text)}, nil
}

func seedExtractedFine(repo *fakeFineRepo) *models.Fine {
	f := &models.Fine{
		ID:       "fine1",
		UserID:   "user1",
		Status:   models.FineStatusExtracted,
		FileID:   "stored-id",
		MimeType: "application/pdf",
		Extracted: &models.FineData{
			NoticeNumber: "1/2025",
			AmountCents:  12000,
			FieldConfidence: map[string]float64{
				"noticeNumber": 0.9,
				"amount":       0.95,
			},
			Confidence:  0.4625,
			NeedsReview: true,
		},
	}
	repo.fines[f.ID] = f
	return f
}

func TestProcessExtractsFields(t *testing.T) {
	notice := `Auto de Contraordenação N.º 555/2025
	No dia 10/02/2025 pelas 09:15, matrícula 12-AB-34.
	Coima: 60,00 € nos termos do artigo 27 do Código da Estrada.
	Autoridade Nacional de Segurança Rodoviária. Prazo de 15 dias.`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake body"))
	}))
	defer ts.Close()

	repo := newFakeFineRepo()
	repo.fines["fine1"] = &models.Fine{
		ID:       "fine1",
		UserID:   "user1",
		Status:   models.FineStatusUploaded,
		FileID:   "stored-id",
		MimeType: "application/pdf",
	}

	svc := &DefaultFineService{
		Repo:     repo,
		Storage:  &fakeStorage{url: ts.URL},
		Pipeline: ocr.NewPipeline(0.55, &textEngine{text: notice}),
		Tasks:    &fakeEnqueuer{},
		TempDir:  t.TempDir(),
	}

	if err := svc.Process(context.Background(), "fine1"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	f, _ := repo.GetByID("fine1")
	if f.Status != models.FineStatusExtracted {
		t.Fatalf("status = %s (%s), want extracted", f.Status, f.FailureReason)
	}
	if f.OCR == nil || f.OCR.Engine != "text" {
		t.Errorf("ocr result not stored: %+v", f.OCR)
	}
	if f.Extracted == nil {
		t.Fatal("extracted data not stored")
	}
	if f.Extracted.NoticeNumber != "555/2025" {
		t.Errorf("notice = %q, want 555/2025", f.Extracted.NoticeNumber)
	}
	if f.Extracted.AmountCents != 6000 {
		t.Errorf("amount = %d, want 6000", f.Extracted.AmountCents)
	}
	if f.Extracted.Plate != "12-AB-34" {
		t.Errorf("plate = %q, want 12-AB-34", f.Extracted.Plate)
	}
}

func TestProcessIdempotentOnExtracted(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)

	// No storage URL configured: a re-download attempt would fail loudly.
	svc := &DefaultFineService{
		Repo:     repo,
		Storage:  &fakeStorage{url: "http://127.0.0.1:1/unreachable"},
		Pipeline: ocr.NewPipeline(0.55),
		Tasks:    &fakeEnqueuer{},
	}

	if err := svc.Process(context.Background(), "fine1"); err != nil {
		t.Fatalf("Process on extracted fine should be a no-op, got %v", err)
	}
}

func TestProcessUnusableTextMarksFailed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("junk"))
	}))
	defer ts.Close()

	repo := newFakeFineRepo()
	repo.fines["fine1"] = &models.Fine{
		ID:       "fine1",
		UserID:   "user1",
		Status:   models.FineStatusUploaded,
		FileID:   "stored-id",
		MimeType: "application/pdf",
	}

	svc := &DefaultFineService{
		Repo:     repo,
		Storage:  &fakeStorage{url: ts.URL},
		Pipeline: ocr.NewPipeline(0.55, &textEngine{text: "@@"}),
		Tasks:    &fakeEnqueuer{},
		TempDir:  t.TempDir(),
	}

	if err := svc.Process(context.Background(), "fine1"); err != nil {
		t.Fatalf("terminal OCR failure should not be retriable, got %v", err)
	}
	f, _ := repo.GetByID("fine1")
	if f.Status != models.FineStatusFailed {
		t.Errorf("status = %s, want failed", f.Status)
	}
	if f.FailureReason == "" {
		t.Error("failure reason missing")
	}
}

func TestProcessDownloadFailureRetriable(t *testing.T) {
	repo := newFakeFineRepo()
	repo.fines["fine1"] = &models.Fine{
		ID:       "fine1",
		UserID:   "user1",
		Status:   models.FineStatusUploaded,
		FileID:   "stored-id",
		MimeType: "application/pdf",
	}

	svc := &DefaultFineService{
		Repo:     repo,
		Storage:  &fakeStorage{url: "http://127.0.0.1:1/unreachable"},
		Pipeline: ocr.NewPipeline(0.55, &textEngine{text: "irrelevant"}),
		Tasks:    &fakeEnqueuer{},
		TempDir:  t.TempDir(),
	}

	if err := svc.Process(context.Background(), "fine1"); err == nil {
		t.Fatal("a download failure must return an error so the queue retries")
	}
	f, _ := repo.GetByID("fine1")
	if f.Status == models.FineStatusFailed {
		t.Error("transient failure must not mark the fine failed")
	}
}

func TestFailTerminalMarksStuckFineFailed(t *testing.T) {
	repo := newFakeFineRepo()
	repo.fines["fine1"] = &models.Fine{
		ID:     "fine1",
		UserID: "user1",
		Status: models.FineStatusProcessing,
	}
	svc := &DefaultFineService{Repo: repo}

	if err := svc.FailTerminal(context.Background(), "fine1", "could not fetch the notice file"); err != nil {
		t.Fatalf("FailTerminal: %v", err)
	}
	f, _ := repo.GetByID("fine1")
	if f.Status != models.FineStatusFailed {
		t.Errorf("status = %s, want failed", f.Status)
	}
	if f.FailureReason == "" {
		t.Error("failure reason missing")
	}
}

func TestFailTerminalLeavesExtractedFineAlone(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)
	svc := &DefaultFineService{Repo: repo}

	if err := svc.FailTerminal(context.Background(), "fine1", "stale retry"); err != nil {
		t.Fatalf("FailTerminal: %v", err)
	}
	f, _ := repo.GetByID("fine1")
	if f.Status != models.FineStatusExtracted {
		t.Errorf("status = %s, a late retry must not undo a successful run", f.Status)
	}
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)
	svc := &DefaultFineService{Repo: repo}

	if _, err := svc.GetByID("user1", "fine1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := svc.GetByID("intruder", "fine1"); err == nil {
		t.Fatal("expected error for another user's fine")
	}
}

func TestCorrectUpdatesFieldsAndRescores(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)
	svc := &DefaultFineService{Repo: repo}

	plate := "AA-01-02"
	date := "2025-02-10"
	corrected, err := svc.Correct("user1", "fine1", models.FineCorrection{
		Plate: &plate,
		Date:  &date,
	})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	if corrected.Extracted.Plate != plate {
		t.Errorf("plate = %q, want %q", corrected.Extracted.Plate, plate)
	}
	if corrected.Extracted.FieldConfidence["plate"] != 1.0 {
		t.Errorf("plate confidence = %v, want 1.0", corrected.Extracted.FieldConfidence["plate"])
	}
	if corrected.Extracted.NeedsReview {
		t.Errorf("needsReview still true after corrections (confidence %v)", corrected.Extracted.Confidence)
	}

	stored, _ := repo.GetByID("fine1")
	if stored.Extracted.Plate != plate {
		t.Error("correction not persisted")
	}
}

func TestCorrectValidatesInput(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)
	svc := &DefaultFineService{Repo: repo}

	badDate := "10/02/2025"
	if _, err := svc.Correct("user1", "fine1", models.FineCorrection{Date: &badDate}); err == nil {
		t.Error("expected error for non-ISO date")
	}

	badAmount := int64(-5)
	if _, err := svc.Correct("user1", "fine1", models.FineCorrection{AmountCents: &badAmount}); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestCorrectRejectsUnextractedFine(t *testing.T) {
	repo := newFakeFineRepo()
	f := seedExtractedFine(repo)
	f.Status = models.FineStatusProcessing
	svc := &DefaultFineService{Repo: repo}

	plate := "AA-01-02"
	if _, err := svc.Correct("user1", "fine1", models.FineCorrection{Plate: &plate}); err == nil {
		t.Error("expected error while the fine is still processing")
	}
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	repo := newFakeFineRepo()
	seedExtractedFine(repo)
	storage := &fakeStorage{}
	svc := &DefaultFineService{Repo: repo, Storage: storage}

	if err := svc.Delete(context.Background(), "user1", "fine1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID("fine1"); err == nil {
		t.Error("fine record still present")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "stored-id" {
		t.Errorf("deleted = %v, want the stored file", storage.deleted)
	}
}
