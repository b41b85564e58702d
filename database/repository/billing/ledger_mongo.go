package billingRepo

import (
	"context"
	"fmt"
	"time"

	"finehero/database"
	"finehero/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedgerRepo implements LedgerRepository using MongoDB.
type MongoLedgerRepo struct {
	coll *mongo.Collection
}

// NewMongoLedgerRepo creates a new instance of LedgerRepository using MongoDB.
func NewMongoLedgerRepo() LedgerRepository {
	coll := database.MongoClient.Database("finehero").Collection("credit_ledger")
	repo := &MongoLedgerRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "paymentIntentId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"paymentIntentId": bson.M{"$type": "string"}},
			),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Append records a credit movement.
func (r *MongoLedgerRepo) Append(entry *models.LedgerEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// GetByUser retrieves a user's full ledger, newest first.
func (r *MongoLedgerRepo) GetByUser(userID string) ([]models.LedgerEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	for cursor.Next(ctx) {
		var e models.LedgerEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// HasPaymentIntent reports whether a purchase for this PaymentIntent exists.
func (r *MongoLedgerRepo) HasPaymentIntent(paymentIntentID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"paymentIntentId": paymentIntentID})
	if err != nil {
		return false, fmt.Errorf("failed to check payment intent %s: %w", paymentIntentID, err)
	}
	return n > 0, nil
}
