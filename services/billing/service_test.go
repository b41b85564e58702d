package billing

import (
	"fmt"
	"testing"
	"time"

	"finehero/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeLedger struct {
	entries   []models.LedgerEntry
	appendErr error
}

func (l *fakeLedger) Append(e *models.LedgerEntry) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, *e)
	return nil
}

func (l *fakeLedger) GetByUser(userID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLedger) HasPaymentIntent(id string) (bool, error) {
	for _, e := range l.entries {
		if e.PaymentIntentID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeUsers struct {
	credits map[string]int
}

func (u *fakeUsers) AdjustCredits(id string, delta int) (int, error) {
	balance, ok := u.credits[id]
	if !ok {
		return 0, fmt.Errorf("user %s not found", id)
	}
	if balance+delta < 0 {
		return 0, fmt.Errorf("insufficient credits")
	}
	u.credits[id] = balance + delta
	return u.credits[id], nil
}

func (u *fakeUsers) Create(*models.User) error                  { return nil }
func (u *fakeUsers) Update(*models.User) error                  { return nil }
func (u *fakeUsers) UpdateSetDocument(string, bson.M) error     { return nil }
func (u *fakeUsers) Delete(string) error                        { return nil }
func (u *fakeUsers) GetByID(string) (*models.User, error)       { return nil, nil }
func (u *fakeUsers) GetByEmail(string) (*models.User, error)    { return nil, nil }
func (u *fakeUsers) GetAll() ([]models.User, error)             { return nil, nil }
func (u *fakeUsers) AppendNotification(string, models.Notification) error { return nil }

func (u *fakeUsers) GetByIDWithProjection(string, bson.M) (*models.User, error) {
	return nil, nil
}

func (u *fakeUsers) GetByEmailWithProjection(string, bson.M) (*models.User, error) {
	return nil, nil
}

func newBillingService(credits int) (*DefaultBillingService, *fakeLedger, *fakeUsers) {
	ledger := &fakeLedger{}
	users := &fakeUsers{credits: map[string]int{"user1": credits}}
	svc := &DefaultBillingService{
		Ledger:        ledger,
		Users:         users,
		WebhookSecret: "whsec_test",
	}
	return svc, ledger, users
}

func TestPacksAreStable(t *testing.T) {
	svc, _, _ := newBillingService(0)

	packs := svc.Packs()
	if len(packs) == 0 {
		t.Fatal("no credit packs configured")
	}
	for _, p := range packs {
		if p.ID == "" || p.Credits <= 0 || p.AmountCents <= 0 {
			t.Errorf("pack %+v is malformed", p)
		}
		if p.Currency != "eur" {
			t.Errorf("pack %s currency = %s, want eur", p.ID, p.Currency)
		}
	}

	// Callers must not be able to mutate the offer.
	packs[0].Credits = 9999
	if svc.Packs()[0].Credits == 9999 {
		t.Error("Packs returned a shared slice")
	}
}

func TestPackByID(t *testing.T) {
	if _, ok := packByID("single"); !ok {
		t.Error("pack single should exist")
	}
	if _, ok := packByID("nonsense"); ok {
		t.Error("unknown pack should not resolve")
	}
}

func TestSpendDecrementsAndLogs(t *testing.T) {
	svc, ledger, users := newBillingService(2)

	if err := svc.Spend("user1", "def1"); err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if users.credits["user1"] != 1 {
		t.Errorf("balance = %d, want 1", users.credits["user1"])
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Type != models.LedgerSpend {
		t.Errorf("ledger = %v, want one spend entry", ledger.entries)
	}
	if ledger.entries[0].Credits != -1 {
		t.Errorf("spend credits = %d, want -1", ledger.entries[0].Credits)
	}
}

func TestSpendFailsOnZeroBalance(t *testing.T) {
	svc, ledger, users := newBillingService(0)

	if err := svc.Spend("user1", "def1"); err == nil {
		t.Fatal("expected insufficient credits error")
	}
	if users.credits["user1"] != 0 {
		t.Errorf("balance = %d, want untouched 0", users.credits["user1"])
	}
	if len(ledger.entries) != 0 {
		t.Errorf("ledger = %v, want empty after failed spend", ledger.entries)
	}
}

func TestSpendSurvivesLedgerFailure(t *testing.T) {
	svc, ledger, users := newBillingService(1)
	ledger.appendErr = fmt.Errorf("mongo down")

	// The decrement already happened; bookkeeping failure must not error out.
	if err := svc.Spend("user1", "def1"); err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if users.credits["user1"] != 0 {
		t.Errorf("balance = %d, want 0", users.credits["user1"])
	}
}

func TestRefundIncrementsAndLogs(t *testing.T) {
	svc, ledger, users := newBillingService(0)

	if err := svc.Refund("user1", "def1"); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if users.credits["user1"] != 1 {
		t.Errorf("balance = %d, want 1", users.credits["user1"])
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Type != models.LedgerRefund {
		t.Errorf("ledger = %v, want one refund entry", ledger.entries)
	}
}

func TestGetLedgerFiltersByUser(t *testing.T) {
	svc, ledger, _ := newBillingService(0)
	ledger.entries = []models.LedgerEntry{
		{ID: "1", UserID: "user1", Type: models.LedgerPurchase, Credits: 5},
		{ID: "2", UserID: "user2", Type: models.LedgerPurchase, Credits: 1},
	}

	entries, err := svc.GetLedger("user1")
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "1" {
		t.Errorf("entries = %v, want only user1's", entries)
	}
}

func signedSucceededPayload(t *testing.T, paymentIntentID string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":%q,"metadata":{"user_id":"user1","pack_id":"pack5"}}}}`,
		stripe.APIVersion, paymentIntentID))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestHandleWebhookCreditsPurchase(t *testing.T) {
	svc, ledger, users := newBillingService(0)

	payload, header := signedSucceededPayload(t, "pi_123")
	if err := svc.HandleWebhook(payload, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	if users.credits["user1"] != 5 {
		t.Errorf("balance = %d, want 5", users.credits["user1"])
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(ledger.entries))
	}
	e := ledger.entries[0]
	if e.Type != models.LedgerPurchase || e.Credits != 5 || e.PaymentIntentID != "pi_123" {
		t.Errorf("ledger entry = %+v, want a 5-credit purchase for pi_123", e)
	}
}

func TestHandleWebhookIdempotentPerPaymentIntent(t *testing.T) {
	svc, ledger, users := newBillingService(0)

	payload, header := signedSucceededPayload(t, "pi_123")
	if err := svc.HandleWebhook(payload, header); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	// Stripe retries deliveries; a replay must not credit twice.
	if err := svc.HandleWebhook(payload, header); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if users.credits["user1"] != 5 {
		t.Errorf("balance = %d, want 5 after duplicate delivery", users.credits["user1"])
	}
	if len(ledger.entries) != 1 {
		t.Errorf("ledger entries = %d, want 1 after duplicate delivery", len(ledger.entries))
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, ledger, _ := newBillingService(0)

	err := svc.HandleWebhook([]byte(`{"type":"payment_intent.succeeded"}`), "t=1,v1=bad")
	if err == nil {
		t.Fatal("expected signature verification failure")
	}
	if len(ledger.entries) != 0 {
		t.Error("no credits may be granted on an unverified webhook")
	}
}
