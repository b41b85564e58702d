package defenseRepo

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

// MongoDefenseRepo implements DefenseRepository using MongoDB.
type MongoDefenseRepo struct {
	coll *mongo.Collection
}

// NewMongoDefenseRepo creates a new instance of DefenseRepository using MongoDB.
func NewMongoDefenseRepo() DefenseRepository {
	coll := database.MongoClient.Database("finehero").Collection("defenses")
	repo := &MongoDefenseRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDefenseRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "fineId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new defense document.
func (r *MongoDefenseRepo) Create(defense *models.Defense) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	defense.CreatedAt = now
	defense.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, defense)
	if err != nil {
		return fmt.Errorf("failed to create defense: %w", err)
	}
	return nil
}

// UpdateSetDocument applies a partial $set update to a defense document.
func (r *MongoDefenseRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updateDoc["updatedAt"] = time.Now()
	update := bson.M{"$set": updateDoc}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update defense with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("defense with id %s not found", id)
	}
	return nil
}

// GetByID retrieves a defense by its unique ID.
func (r *MongoDefenseRepo) GetByID(id string) (*models.Defense, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var defense models.Defense
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&defense); err != nil {
		return nil, fmt.Errorf("failed to fetch defense with id %s: %w", id, err)
	}
	return &defense, nil
}

// GetByUser retrieves all defenses of one user, newest first.
func (r *MongoDefenseRepo) GetByUser(userID string) ([]models.Defense, error) {
	return r.find(bson.M{"userId": userID})
}

// GetByFine retrieves all defense versions generated for a fine.
func (r *MongoDefenseRepo) GetByFine(fineID string) ([]models.Defense, error) {
	return r.find(bson.M{"fineId": fineID})
}

func (r *MongoDefenseRepo) find(filter bson.M) ([]models.Defense, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve defenses: %w", err)
	}
	defer cursor.Close(ctx)

	var defenses []models.Defense
	for cursor.Next(ctx) {
		var d models.Defense
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode defense: %w", err)
		}
		defenses = append(defenses, d)
	}
	return defenses, nil
}

// CountVersions returns how many defenses already exist for a fine.
func (r *MongoDefenseRepo) CountVersions(fineID string) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"fineId": fineID})
	if err != nil {
		return 0, fmt.Errorf("failed to count defenses for fine %s: %w", fineID, err)
	}
	return int(n), nil
}
