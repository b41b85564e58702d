package fineRepo

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

// MongoFineRepo implements FineRepository using MongoDB.
type MongoFineRepo struct {
	coll *mongo.Collection
}

// NewMongoFineRepo creates a new instance of FineRepository using MongoDB.
func NewMongoFineRepo() FineRepository {
	coll := database.MongoClient.Database("finehero").Collection("fines")
	repo := &MongoFineRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoFineRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new fine document.
func (r *MongoFineRepo) Create(fine *models.Fine) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	fine.CreatedAt = now
	fine.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, fine)
	if err != nil {
		return fmt.Errorf("failed to create fine: %w", err)
	}
	return nil
}

// UpdateSetDocument applies a partial $set update to a fine document.
func (r *MongoFineRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updateDoc["updatedAt"] = time.Now()
	update := bson.M{"$set": updateDoc}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update fine with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("fine with id %s not found", id)
	}
	return nil
}

// Delete removes a fine document by its ID.
func (r *MongoFineRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete fine with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("fine with id %s not found", id)
	}
	return nil
}

// GetByID retrieves a fine by its unique ID.
func (r *MongoFineRepo) GetByID(id string) (*models.Fine, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var fine models.Fine
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&fine); err != nil {
		return nil, fmt.Errorf("failed to fetch fine with id %s: %w", id, err)
	}
	return &fine, nil
}

// GetByUser retrieves all fines of one user, newest first.
func (r *MongoFineRepo) GetByUser(userID string) ([]models.Fine, error) {
	return r.find(bson.M{"userId": userID})
}

// GetByStatus retrieves all fines in the given status.
func (r *MongoFineRepo) GetByStatus(status string) ([]models.Fine, error) {
	return r.find(bson.M{"status": status})
}

func (r *MongoFineRepo) find(filter bson.M) ([]models.Fine, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve fines: %w", err)
	}
	defer cursor.Close(ctx)

	var fines []models.Fine
	for cursor.Next(ctx) {
		var f models.Fine
		if err := cursor.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode fine: %w", err)
		}
		fines = append(fines, f)
	}
	return fines, nil
}

// SetStatus transitions a fine's status and optionally records a failure reason.
func (r *MongoFineRepo) SetStatus(id, status, failureReason string) error {
	updateDoc := bson.M{"status": status}
	if failureReason != "" {
		updateDoc["failureReason"] = failureReason
	}
	return r.UpdateSetDocument(id, updateDoc)
}
