package billing

import (
	"context"
	"encoding/json"
	"fmt"

	billingRepo "finehero/database/repository/billing"
	userRepo "finehero/database/repository/user"
	"finehero/models"
	"finehero/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// Credit packs on offer. IDs are stable, they travel in Stripe metadata.
var creditPacks = []models.CreditPack{
	{ID: "single", Credits: 1, AmountCents: 1490, Currency: "eur"},
	{ID: "pack5", Credits: 5, AmountCents: 5990, Currency: "eur"},
}

// DefaultBillingService is the production implementation.
type DefaultBillingService struct {
	Ledger        billingRepo.LedgerRepository
	Users         userRepo.UserRepository
	WebhookSecret string
}

func (s *DefaultBillingService) Packs() []models.CreditPack {
	packs := make([]models.CreditPack, len(creditPacks))
	copy(packs, creditPacks)
	return packs
}

func packByID(id string) (models.CreditPack, bool) {
	for _, p := range creditPacks {
		if p.ID == id {
			return p, true
		}
	}
	return models.CreditPack{}, false
}

// CreatePaymentIntent starts a Stripe payment for a credit pack.
func (s *DefaultBillingService) CreatePaymentIntent(ctx context.Context, userID, packID string) (string, error) {
	pack, ok := packByID(packID)
	if !ok {
		return "", fmt.Errorf("unknown credit pack: %s", packID)
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(pack.AmountCents),
		Currency: stripe.String(pack.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("pack_id", pack.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	utils.GetLogger().Info("billing: payment intent created",
		zap.String("userId", userID),
		zap.String("packId", pack.ID),
		zap.String("paymentIntent", pi.ID))
	return pi.ClientSecret, nil
}

// HandleWebhook verifies the Stripe signature and credits the purchase on
// payment_intent.succeeded. Crediting is idempotent per PaymentIntent.
func (s *DefaultBillingService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.WebhookSecret)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	if event.Type != "payment_intent.succeeded" {
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}

	userID := pi.Metadata["user_id"]
	packID := pi.Metadata["pack_id"]
	pack, ok := packByID(packID)
	if userID == "" || !ok {
		return fmt.Errorf("payment intent %s missing purchase metadata", pi.ID)
	}

	seen, err := s.Ledger.HasPaymentIntent(pi.ID)
	if err != nil {
		return fmt.Errorf("check payment intent %s: %w", pi.ID, err)
	}
	if seen {
		utils.GetLogger().Info("billing: duplicate webhook ignored", zap.String("paymentIntent", pi.ID))
		return nil
	}

	entry := &models.LedgerEntry{
		ID:              uuid.New().String(),
		UserID:          userID,
		Type:            models.LedgerPurchase,
		Credits:         pack.Credits,
		PaymentIntentID: pi.ID,
	}
	if err := s.Ledger.Append(entry); err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}

	balance, err := s.Users.AdjustCredits(userID, pack.Credits)
	if err != nil {
		return fmt.Errorf("credit user %s: %w", userID, err)
	}

	utils.GetLogger().Info("billing: credits purchased",
		zap.String("userId", userID),
		zap.Int("credits", pack.Credits),
		zap.Int("balance", balance))
	return nil
}

// Spend consumes one credit for a defense. The balance decrement happens
// first; the ledger entry follows so a crash can only lose bookkeeping, not
// give out free letters.
func (s *DefaultBillingService) Spend(userID, defenseID string) error {
	if _, err := s.Users.AdjustCredits(userID, -1); err != nil {
		return err
	}

	entry := &models.LedgerEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      models.LedgerSpend,
		Credits:   -1,
		DefenseID: defenseID,
	}
	if err := s.Ledger.Append(entry); err != nil {
		utils.GetLogger().Error("billing: spend recorded on user but ledger append failed",
			zap.String("userId", userID), zap.Error(err))
	}
	return nil
}

// Refund returns one credit after a terminal generation failure.
func (s *DefaultBillingService) Refund(userID, defenseID string) error {
	if _, err := s.Users.AdjustCredits(userID, 1); err != nil {
		return err
	}

	entry := &models.LedgerEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      models.LedgerRefund,
		Credits:   1,
		DefenseID: defenseID,
	}
	if err := s.Ledger.Append(entry); err != nil {
		utils.GetLogger().Error("billing: refund recorded on user but ledger append failed",
			zap.String("userId", userID), zap.Error(err))
	}
	return nil
}

// GetLedger returns the user's credit history.
func (s *DefaultBillingService) GetLedger(userID string) ([]models.LedgerEntry, error) {
	return s.Ledger.GetByUser(userID)
}
