package legalRepo

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

// MongoLegalRepo implements LegalRepository using MongoDB.
type MongoLegalRepo struct {
	articles *mongo.Collection
	chunks   *mongo.Collection
}

// NewMongoLegalRepo creates a new instance of LegalRepository using MongoDB.
func NewMongoLegalRepo() LegalRepository {
	db := database.MongoClient.Database("finehero")
	repo := &MongoLegalRepo{
		articles: db.Collection("legal_articles"),
		chunks:   db.Collection("legal_chunks"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLegalRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	_, err := r.articles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}, {Key: "article", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create article indexes: %w", err)
	}

	_, err = r.chunks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "articleId", Value: 1}, {Key: "seq", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chunk indexes: %w", err)
	}
	return nil
}

// UpsertArticle inserts or replaces an article by ID.
func (r *MongoLegalRepo) UpsertArticle(article *models.LegalArticle) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	_, err := r.articles.ReplaceOne(ctx, bson.M{"id": article.ID}, article, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", article.ID, err)
	}
	return nil
}

// GetArticle retrieves an article by its unique ID.
func (r *MongoLegalRepo) GetArticle(id string) (*models.LegalArticle, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var article models.LegalArticle
	if err := r.articles.FindOne(ctx, bson.M{"id": id}).Decode(&article); err != nil {
		return nil, fmt.Errorf("failed to fetch article with id %s: %w", id, err)
	}
	return &article, nil
}

// GetAllArticles retrieves the full knowledge base.
func (r *MongoLegalRepo) GetAllArticles() ([]models.LegalArticle, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.articles.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []models.LegalArticle
	for cursor.Next(ctx) {
		var a models.LegalArticle
		if err := cursor.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// DeleteArticle removes an article and its chunks.
func (r *MongoLegalRepo) DeleteArticle(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.chunks.DeleteMany(ctx, bson.M{"articleId": id}); err != nil {
		return fmt.Errorf("failed to delete chunks for article %s: %w", id, err)
	}
	result, err := r.articles.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete article %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("article with id %s not found", id)
	}
	return nil
}

// ReplaceChunks swaps the chunk set of an article atomically enough for our
// purposes: delete then insert; the index is rebuilt from Mongo afterwards.
func (r *MongoLegalRepo) ReplaceChunks(articleID string, chunks []models.LegalChunk) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.chunks.DeleteMany(ctx, bson.M{"articleId": articleID}); err != nil {
		return fmt.Errorf("failed to clear chunks for article %s: %w", articleID, err)
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(chunks))
	now := time.Now()
	for i := range chunks {
		if chunks[i].CreatedAt.IsZero() {
			chunks[i].CreatedAt = now
		}
		docs = append(docs, chunks[i])
	}
	if _, err := r.chunks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert chunks for article %s: %w", articleID, err)
	}
	return nil
}

// GetAllChunks retrieves every embedded chunk (used to rebuild the index).
func (r *MongoLegalRepo) GetAllChunks() ([]models.LegalChunk, error) {
	ctx, cancel := newContext(30 * time.Second)
	defer cancel()

	cursor, err := r.chunks.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var chunks []models.LegalChunk
	for cursor.Next(ctx) {
		var c models.LegalChunk
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// GetChunk retrieves one chunk by ID.
func (r *MongoLegalRepo) GetChunk(id string) (*models.LegalChunk, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var chunk models.LegalChunk
	if err := r.chunks.FindOne(ctx, bson.M{"id": id}).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("failed to fetch chunk with id %s: %w", id, err)
	}
	return &chunk, nil
}
