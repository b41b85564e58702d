package billingRepo

import "finehero/models"

// LedgerRepository defines persistence for the credit ledger.
type LedgerRepository interface {
	Append(entry *models.LedgerEntry) error
	GetByUser(userID string) ([]models.LedgerEntry, error)
	// HasPaymentIntent reports whether a purchase for this PaymentIntent was
	// already recorded. Used to keep webhook crediting idempotent.
	HasPaymentIntent(paymentIntentID string) (bool, error)
}
