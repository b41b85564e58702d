package defense

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"finehero/models"
	"finehero/services/legal"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeDefenseRepo struct {
	defenses map[string]*models.Defense
}

func newFakeDefenseRepo() *fakeDefenseRepo {
	return &fakeDefenseRepo{defenses: map[string]*models.Defense{}}
}

func (r *fakeDefenseRepo) Create(d *models.Defense) error {
	cp := *d
	r.defenses[d.ID] = &cp
	return nil
}

func (r *fakeDefenseRepo) UpdateSetDocument(id string, doc bson.M) error {
	d, ok := r.defenses[id]
	if !ok {
		return fmt.Errorf("defense %s not found", id)
	}
	for k, v := range doc {
		switch k {
		case "status":
			d.Status = v.(string)
		case "letterMarkdown":
			d.LetterMarkdown = v.(string)
		case "citations":
			d.Citations = v.([]models.Citation)
		case "noCitations":
			d.NoCitations = v.(bool)
		case "model":
			d.Model = v.(string)
		case "promptTokens":
			d.PromptTokens = v.(int32)
		case "outputTokens":
			d.OutputTokens = v.(int32)
		case "failureReason":
			d.FailureReason = v.(string)
		}
	}
	return nil
}

func (r *fakeDefenseRepo) GetByID(id string) (*models.Defense, error) {
	d, ok := r.defenses[id]
	if !ok {
		return nil, fmt.Errorf("defense %s not found", id)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDefenseRepo) GetByUser(userID string) ([]models.Defense, error) {
	var out []models.Defense
	for _, d := range r.defenses {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDefenseRepo) GetByFine(fineID string) ([]models.Defense, error) {
	var out []models.Defense
	for _, d := range r.defenses {
		if d.FineID == fineID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDefenseRepo) CountVersions(fineID string) (int, error) {
	n := 0
	for _, d := range r.defenses {
		if d.FineID == fineID {
			n++
		}
	}
	return n, nil
}

type fakeFineRepo struct {
	fines map[string]*models.Fine
}

func (r *fakeFineRepo) Create(f *models.Fine) error                  { r.fines[f.ID] = f; return nil }
func (r *fakeFineRepo) UpdateSetDocument(string, bson.M) error       { return nil }
func (r *fakeFineRepo) Delete(string) error                          { return nil }
func (r *fakeFineRepo) GetByUser(string) ([]models.Fine, error)      { return nil, nil }
func (r *fakeFineRepo) GetByStatus(string) ([]models.Fine, error)    { return nil, nil }
func (r *fakeFineRepo) SetStatus(id, status, reason string) error    { return nil }

func (r *fakeFineRepo) GetByID(id string) (*models.Fine, error) {
	f, ok := r.fines[id]
	if !ok {
		return nil, fmt.Errorf("fine %s not found", id)
	}
	return f, nil
}

type fakeLegalService struct {
	results []models.RetrievedChunk
	err     error
}

func (s *fakeLegalService) Ingest(context.Context, []legal.ArticleInput) ([]models.LegalArticle, error) {
	return nil, nil
}
func (s *fakeLegalService) Reindex(context.Context) (int, error)    { return 0, nil }
func (s *fakeLegalService) ListArticles() ([]models.LegalArticle, error) { return nil, nil }
func (s *fakeLegalService) DeleteArticle(context.Context, string) error  { return nil }

func (s *fakeLegalService) Retrieve(context.Context, string, int) ([]models.RetrievedChunk, error) {
	return s.results, s.err
}

type fakeGenerator struct {
	text string
	err  error
}

func (g *fakeGenerator) ModelName() string { return "fake-model" }

func (g *fakeGenerator) Generate(context.Context, string) (*Generation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &Generation{Text: g.text, PromptTokens: 100, OutputTokens: 200}, nil
}

type fakeBilling struct {
	spendErr error
	spent    []string
	refunded []string
}

func (b *fakeBilling) Packs() []models.CreditPack { return nil }
func (b *fakeBilling) CreatePaymentIntent(context.Context, string, string) (string, error) {
	return "", nil
}
func (b *fakeBilling) HandleWebhook([]byte, string) error           { return nil }
func (b *fakeBilling) GetLedger(string) ([]models.LedgerEntry, error) { return nil, nil }

func (b *fakeBilling) Spend(userID, defenseID string) error {
	if b.spendErr != nil {
		return b.spendErr
	}
	b.spent = append(b.spent, defenseID)
	return nil
}

func (b *fakeBilling) Refund(userID, defenseID string) error {
	b.refunded = append(b.refunded, defenseID)
	return nil
}

type fakeNotifier struct {
	types []string
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, notifType, message string, data map[string]interface{}) error {
	n.types = append(n.types, notifType)
	return nil
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

func newTestService() (*DefaultDefenseService, *fakeDefenseRepo, *fakeFineRepo, *fakeBilling, *fakeEnqueuer, *fakeNotifier) {
	defRepo := newFakeDefenseRepo()
	fines := &fakeFineRepo{fines: map[string]*models.Fine{
		"fine1": {
			ID:     "fine1",
			UserID: "user1",
			Status: models.FineStatusExtracted,
			Extracted: &models.FineData{
				Article:     "27",
				AmountCents: 12000,
			},
		},
	}}
	bill := &fakeBilling{}
	enq := &fakeEnqueuer{}
	notif := &fakeNotifier{}

	svc := &DefaultDefenseService{
		Repo:      defRepo,
		Fines:     fines,
		Legal:     &fakeLegalService{},
		Generator: &fakeGenerator{text: "Exmo. Senhor,\n\nVenho contestar..."},
		Billing:   bill,
		Notify:    notif,
		Tasks:     enq,
		TopK:      6,
	}
	return svc, defRepo, fines, bill, enq, notif
}

func TestRequestDefenseHappyPath(t *testing.T) {
	svc, repo, _, bill, enq, _ := newTestService()

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if def.Status != models.DefenseStatusQueued {
		t.Errorf("status = %s, want queued", def.Status)
	}
	if def.Version != 1 {
		t.Errorf("version = %d, want 1", def.Version)
	}
	if len(bill.spent) != 1 || bill.spent[0] != def.ID {
		t.Errorf("spent = %v, want exactly the new defense", bill.spent)
	}
	if len(enq.enqueued) != 1 {
		t.Errorf("enqueued = %v, want one generation task", enq.enqueued)
	}
	if _, err := repo.GetByID(def.ID); err != nil {
		t.Errorf("defense not persisted: %v", err)
	}
}

func TestRequestDefenseVersionIncrements(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	first, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Errorf("versions = %d, %d; want 1, 2", first.Version, second.Version)
	}
}

func TestRequestDefenseRejectsOtherUsersFine(t *testing.T) {
	svc, _, _, bill, _, _ := newTestService()

	if _, err := svc.RequestDefense(context.Background(), "intruder", "fine1"); err == nil {
		t.Fatal("expected error for another user's fine")
	}
	if len(bill.spent) != 0 {
		t.Error("no credit should be spent on a rejected request")
	}
}

func TestRequestDefenseRejectsUnextractedFine(t *testing.T) {
	svc, _, fines, bill, _, _ := newTestService()
	fines.fines["fine1"].Status = models.FineStatusProcessing

	if _, err := svc.RequestDefense(context.Background(), "user1", "fine1"); err == nil {
		t.Fatal("expected error for an unextracted fine")
	}
	if len(bill.spent) != 0 {
		t.Error("no credit should be spent on a rejected request")
	}
}

func TestRequestDefenseInsufficientCredits(t *testing.T) {
	svc, _, _, bill, enq, _ := newTestService()
	bill.spendErr = errors.New("insufficient credits")

	if _, err := svc.RequestDefense(context.Background(), "user1", "fine1"); err == nil {
		t.Fatal("expected insufficient credits error")
	}
	if len(enq.enqueued) != 0 {
		t.Error("nothing should be enqueued without a spent credit")
	}
}

func TestRequestDefenseEnqueueFailureRefunds(t *testing.T) {
	svc, repo, _, bill, enq, _ := newTestService()
	enq.err = errors.New("queue down")

	_, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err == nil {
		t.Fatal("expected enqueue error")
	}
	if len(bill.refunded) != 1 {
		t.Errorf("refunded = %v, want the spent credit back", bill.refunded)
	}
	for _, d := range repo.defenses {
		if d.Status != models.DefenseStatusFailed {
			t.Errorf("defense status = %s, want failed", d.Status)
		}
	}
}

func TestGenerateStoresLetterAndCitations(t *testing.T) {
	svc, repo, _, _, _, notif := newTestService()
	svc.Legal = &fakeLegalService{results: []models.RetrievedChunk{
		{
			Chunk:   models.LegalChunk{ID: "c1", Text: "texto legal"},
			Article: models.LegalArticle{ID: "a1", Code: "CE", Article: "27", Title: "Velocidade"},
			Score:   0.8,
		},
	}}

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stored, _ := repo.GetByID(def.ID)
	if stored.Status != models.DefenseStatusReady {
		t.Errorf("status = %s, want ready", stored.Status)
	}
	if stored.LetterMarkdown == "" {
		t.Error("letter not stored")
	}
	if len(stored.Citations) != 1 || stored.Citations[0].ArticleID != "a1" {
		t.Errorf("citations = %v, want the retrieved article", stored.Citations)
	}
	if stored.NoCitations {
		t.Error("noCitations should be false with retrieval results")
	}
	if stored.Model != "fake-model" {
		t.Errorf("model = %s, want fake-model", stored.Model)
	}
	if len(notif.types) == 0 || notif.types[len(notif.types)-1] != "defense_ready" {
		t.Errorf("notifications = %v, want defense_ready", notif.types)
	}
}

func TestGenerateDegradesWithoutRetrieval(t *testing.T) {
	svc, repo, _, _, _, _ := newTestService()
	svc.Legal = &fakeLegalService{err: errors.New("index down")}

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("Generate should degrade, not fail: %v", err)
	}

	stored, _ := repo.GetByID(def.ID)
	if stored.Status != models.DefenseStatusReady {
		t.Errorf("status = %s, want ready", stored.Status)
	}
	if !stored.NoCitations {
		t.Error("noCitations should be true when retrieval failed")
	}
}

func TestGenerateModelFailureRetriable(t *testing.T) {
	svc, repo, _, bill, _, _ := newTestService()
	svc.Generator = &fakeGenerator{err: errors.New("model unavailable")}

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if err := svc.Generate(context.Background(), def.ID); err == nil {
		t.Fatal("expected retriable error from Generate")
	}

	// Not yet terminal: no refund until retries are exhausted.
	if len(bill.refunded) != 0 {
		t.Errorf("refunded = %v, want none before FailTerminal", bill.refunded)
	}

	svc.FailTerminal(context.Background(), def.ID, "generation failed after retries")
	stored, _ := repo.GetByID(def.ID)
	if stored.Status != models.DefenseStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if len(bill.refunded) != 1 {
		t.Errorf("refunded = %v, want exactly one refund", bill.refunded)
	}
}

func TestGenerateIdempotentOnReady(t *testing.T) {
	svc, repo, _, _, _, notif := newTestService()

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	notified := len(notif.types)

	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if len(notif.types) != notified {
		t.Error("a repeated Generate on a ready defense must not notify again")
	}
	stored, _ := repo.GetByID(def.ID)
	if stored.Status != models.DefenseStatusReady {
		t.Errorf("status = %s, want ready", stored.Status)
	}
}

func TestFailTerminalSkipsReadyDefense(t *testing.T) {
	svc, repo, _, bill, _, _ := newTestService()

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	svc.FailTerminal(context.Background(), def.ID, "late retry")
	stored, _ := repo.GetByID(def.ID)
	if stored.Status != models.DefenseStatusReady {
		t.Errorf("status = %s, a ready defense must not be failed", stored.Status)
	}
	if len(bill.refunded) != 0 {
		t.Errorf("refunded = %v, want none for a delivered letter", bill.refunded)
	}
}

func TestListByFineFiltersOwner(t *testing.T) {
	svc, repo, _, _, _, _ := newTestService()

	repo.Create(&models.Defense{ID: "d1", UserID: "user1", FineID: "fine1"})
	repo.Create(&models.Defense{ID: "d2", UserID: "user2", FineID: "fine1"})

	defs, err := svc.ListByFine("user1", "fine1")
	if err != nil {
		t.Fatalf("ListByFine: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "d1" {
		t.Errorf("defs = %v, want only user1's defense", defs)
	}
}

func TestRenderHTMLByIDRequiresReady(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	def, err := svc.RequestDefense(context.Background(), "user1", "fine1")
	if err != nil {
		t.Fatalf("RequestDefense: %v", err)
	}
	if _, err := svc.RenderHTMLByID("user1", def.ID); err == nil {
		t.Fatal("expected error for a queued defense")
	}

	if err := svc.Generate(context.Background(), def.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	html, err := svc.RenderHTMLByID("user1", def.ID)
	if err != nil {
		t.Fatalf("RenderHTMLByID: %v", err)
	}
	if html == "" {
		t.Error("rendered letter is empty")
	}
}
