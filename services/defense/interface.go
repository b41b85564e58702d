package defense

import (
	"context"

	defenseRepo "finehero/database/repository/defense"
	fineRepo "finehero/database/repository/fine"
	"finehero/models"
	"finehero/services/billing"
	"finehero/services/legal"
	"finehero/services/notification"
	"finehero/services/tasks"
)

// DefenseService creates and serves generated contestation letters.
type DefenseService interface {
	// RequestDefense spends one credit and enqueues letter generation for an
	// extracted fine owned by the user.
	RequestDefense(ctx context.Context, userID, fineID string) (*models.Defense, error)
	// Generate is the worker entrypoint: retrieval, prompting and storage.
	Generate(ctx context.Context, defenseID string) error
	GetByID(userID, id string) (*models.Defense, error)
	ListByUser(userID string) ([]models.Defense, error)
	ListByFine(userID, fineID string) ([]models.Defense, error)
	// RenderHTMLByID renders the stored Markdown letter as HTML.
	RenderHTMLByID(userID, id string) (string, error)
}

// DefaultDefenseService is the production implementation.
type DefaultDefenseService struct {
	Repo      defenseRepo.DefenseRepository
	Fines     fineRepo.FineRepository
	Legal     legal.LegalService
	Generator Generator
	Billing   billing.BillingService
	Notify    notification.NotificationService
	Tasks     tasks.Enqueuer
	TopK      int
}
