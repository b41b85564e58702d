package models

import "time"

// Ledger entry types.
const (
	LedgerPurchase = "purchase"
	LedgerSpend    = "spend"
	LedgerRefund   = "refund"
)

// CreditPack is a purchasable bundle of defense credits.
type CreditPack struct {
	ID          string `json:"id"`
	Credits     int    `json:"credits"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// LedgerEntry records every credit movement on an account.
type LedgerEntry struct {
	ID              string    `bson:"id" json:"id"`
	UserID          string    `bson:"userId" json:"userId"`
	Type            string    `bson:"type" json:"type"`
	Credits         int       `bson:"credits" json:"credits"` // positive for purchase/refund, negative for spend
	PaymentIntentID string    `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	DefenseID       string    `bson:"defenseId,omitempty" json:"defenseId,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
