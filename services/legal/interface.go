package legal

import (
	"context"

	"finehero/models"
)

// ArticleInput is the ingestion payload for one statutory article.
type ArticleInput struct {
	Code    string   `json:"code" binding:"required"`
	Article string   `json:"article" binding:"required"`
	Title   string   `json:"title"`
	Body    string   `json:"body" binding:"required"`
	Tags    []string `json:"tags"`
}

// LegalService manages the knowledge base and serves retrieval queries.
type LegalService interface {
	// Ingest chunks, embeds and persists articles, then refreshes the index.
	Ingest(ctx context.Context, articles []ArticleInput) ([]models.LegalArticle, error)
	// Reindex rebuilds the in-memory index from Mongo.
	Reindex(ctx context.Context) (int, error)
	// Retrieve returns the top-k chunks most similar to the query.
	Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error)
	ListArticles() ([]models.LegalArticle, error)
	DeleteArticle(ctx context.Context, id string) error
}
