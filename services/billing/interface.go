package billing

import (
	"context"

	"finehero/models"
)

// BillingService sells credit packs and keeps the credit ledger.
type BillingService interface {
	Packs() []models.CreditPack
	// CreatePaymentIntent starts a Stripe payment for a credit pack and
	// returns the client secret for the frontend to confirm.
	CreatePaymentIntent(ctx context.Context, userID, packID string) (string, error)
	// HandleWebhook verifies and applies a Stripe webhook event.
	HandleWebhook(payload []byte, sigHeader string) error
	// Spend consumes one credit for a defense. Fails when the balance is zero.
	Spend(userID, defenseID string) error
	// Refund returns one credit after a terminal generation failure.
	Refund(userID, defenseID string) error
	GetLedger(userID string) ([]models.LedgerEntry, error)
}
