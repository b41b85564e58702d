package defense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finehero/models"
	"finehero/services/tasks"
	"finehero/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// RequestDefense validates ownership and extraction state, charges one
// credit, then enqueues generation. The credit is spent before enqueue and
// refunded if generation terminally fails.
func (s *DefaultDefenseService) RequestDefense(ctx context.Context, userID, fineID string) (*models.Defense, error) {
	logger := utils.GetLogger()

	fine, err := s.Fines.GetByID(fineID)
	if err != nil {
		return nil, fmt.Errorf("load fine: %w", err)
	}
	if fine.UserID != userID {
		return nil, fmt.Errorf("fine not found")
	}
	if fine.Status != models.FineStatusExtracted {
		return nil, fmt.Errorf("fine is not extracted yet (status %s)", fine.Status)
	}

	versions, err := s.Repo.CountVersions(fineID)
	if err != nil {
		return nil, fmt.Errorf("count versions: %w", err)
	}

	now := time.Now()
	def := &models.Defense{
		ID:        uuid.New().String(),
		UserID:    userID,
		FineID:    fineID,
		Status:    models.DefenseStatusQueued,
		Version:   versions + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Billing.Spend(userID, def.ID); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(def); err != nil {
		// The credit is already gone; give it back.
		if refErr := s.Billing.Refund(userID, def.ID); refErr != nil {
			logger.Error("defense: refund after create failure also failed",
				zap.String("userId", userID), zap.Error(refErr))
		}
		return nil, fmt.Errorf("create defense: %w", err)
	}

	task, opts, err := tasks.NewDefenseGenerateTask(def.ID)
	if err != nil {
		return nil, fmt.Errorf("build generation task: %w", err)
	}
	if _, err := s.Tasks.Enqueue(task, opts...); err != nil {
		s.failTerminally(ctx, def, "could not schedule generation")
		return nil, fmt.Errorf("enqueue generation: %w", err)
	}

	logger.Info("defense: requested",
		zap.String("defenseId", def.ID), zap.String("fineId", fineID),
		zap.Int("version", def.Version))
	return def, nil
}

// Generate produces the letter for a queued defense. Returned errors signal
// the queue to retry; the last retry exhausting marks the defense failed via
// the worker's retry-exhausted hook calling FailTerminal.
func (s *DefaultDefenseService) Generate(ctx context.Context, defenseID string) error {
	logger := utils.GetLogger()

	def, err := s.Repo.GetByID(defenseID)
	if err != nil {
		return fmt.Errorf("load defense %s: %w", defenseID, err)
	}
	if def.Status == models.DefenseStatusReady {
		logger.Debug("defense: already ready, skipping", zap.String("defenseId", defenseID))
		return nil
	}

	fine, err := s.Fines.GetByID(def.FineID)
	if err != nil {
		return fmt.Errorf("load fine %s: %w", def.FineID, err)
	}
	if fine.Extracted == nil {
		s.failTerminally(ctx, def, "fine has no extracted data")
		return nil
	}

	if err := s.Repo.UpdateSetDocument(defenseID, bson.M{
		"status":    models.DefenseStatusGenerating,
		"updatedAt": time.Now(),
	}); err != nil {
		return fmt.Errorf("mark defense generating: %w", err)
	}

	query := BuildQuery(fine.Extracted)
	retrieved, err := s.Legal.Retrieve(ctx, query, s.TopK)
	if err != nil {
		// Retrieval failure degrades to a letter without citations rather
		// than blocking the user.
		logger.Warn("defense: retrieval failed, generating without citations",
			zap.String("defenseId", defenseID), zap.Error(err))
		retrieved = nil
	}

	prompt := BuildPrompt(fine.Extracted, retrieved)
	gen, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate letter: %w", err)
	}
	letter := strings.TrimSpace(gen.Text)
	if letter == "" {
		return fmt.Errorf("generate letter: model returned empty text")
	}

	citations := make([]models.Citation, 0, len(retrieved))
	for _, r := range retrieved {
		citations = append(citations, models.Citation{
			ArticleID: r.Article.ID,
			Code:      r.Article.Code,
			Article:   r.Article.Article,
			Title:     r.Article.Title,
			Score:     r.Score,
		})
	}

	update := bson.M{
		"status":         models.DefenseStatusReady,
		"letterMarkdown": letter,
		"citations":      citations,
		"noCitations":    len(citations) == 0,
		"model":          s.Generator.ModelName(),
		"promptTokens":   gen.PromptTokens,
		"outputTokens":   gen.OutputTokens,
		"updatedAt":      time.Now(),
	}
	if err := s.Repo.UpdateSetDocument(defenseID, update); err != nil {
		return fmt.Errorf("store letter: %w", err)
	}

	if s.Notify != nil {
		if err := s.Notify.Notify(ctx, def.UserID, "defense_ready",
			"A sua carta de defesa está pronta.",
			map[string]interface{}{"defenseId": def.ID, "fineId": def.FineID}); err != nil {
			logger.Warn("defense: ready notification failed",
				zap.String("defenseId", defenseID), zap.Error(err))
		}
	}

	logger.Info("defense: generated",
		zap.String("defenseId", defenseID),
		zap.Int("citations", len(citations)),
		zap.Int32("outputTokens", gen.OutputTokens))
	return nil
}

// FailTerminal marks a defense failed and refunds the credit. The worker
// calls it when generation retries are exhausted.
func (s *DefaultDefenseService) FailTerminal(ctx context.Context, defenseID, reason string) {
	def, err := s.Repo.GetByID(defenseID)
	if err != nil {
		utils.GetLogger().Error("defense: cannot load for terminal failure",
			zap.String("defenseId", defenseID), zap.Error(err))
		return
	}
	if def.Status == models.DefenseStatusReady || def.Status == models.DefenseStatusFailed {
		return
	}
	s.failTerminally(ctx, def, reason)
}

func (s *DefaultDefenseService) failTerminally(ctx context.Context, def *models.Defense, reason string) {
	logger := utils.GetLogger()

	if err := s.Repo.UpdateSetDocument(def.ID, bson.M{
		"status":        models.DefenseStatusFailed,
		"failureReason": reason,
		"updatedAt":     time.Now(),
	}); err != nil {
		logger.Error("defense: failed to mark terminal failure",
			zap.String("defenseId", def.ID), zap.Error(err))
	}
	if err := s.Billing.Refund(def.UserID, def.ID); err != nil {
		logger.Error("defense: credit refund failed",
			zap.String("defenseId", def.ID), zap.String("userId", def.UserID), zap.Error(err))
	}
	if s.Notify != nil {
		if err := s.Notify.Notify(ctx, def.UserID, "defense_failed",
			"Não foi possível gerar a carta de defesa; o crédito foi devolvido.",
			map[string]interface{}{"defenseId": def.ID, "fineId": def.FineID}); err != nil {
			logger.Warn("defense: failure notification failed",
				zap.String("defenseId", def.ID), zap.Error(err))
		}
	}
	logger.Warn("defense: terminally failed",
		zap.String("defenseId", def.ID), zap.String("reason", reason))
}

// GetByID returns the defense only to its owner.
func (s *DefaultDefenseService) GetByID(userID, id string) (*models.Defense, error) {
	def, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if def.UserID != userID {
		return nil, fmt.Errorf("defense not found")
	}
	return def, nil
}

func (s *DefaultDefenseService) ListByUser(userID string) ([]models.Defense, error) {
	return s.Repo.GetByUser(userID)
}

func (s *DefaultDefenseService) ListByFine(userID, fineID string) ([]models.Defense, error) {
	defs, err := s.Repo.GetByFine(fineID)
	if err != nil {
		return nil, err
	}
	out := defs[:0]
	for _, d := range defs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// RenderHTMLByID renders the stored Markdown as sanitary HTML for preview.
func (s *DefaultDefenseService) RenderHTMLByID(userID, id string) (string, error) {
	def, err := s.GetByID(userID, id)
	if err != nil {
		return "", err
	}
	if def.Status != models.DefenseStatusReady {
		return "", fmt.Errorf("defense is not ready (status %s)", def.Status)
	}
	return RenderHTML(def.LetterMarkdown)
}
