package legalRepo

import "finehero/models"

// LegalRepository defines persistence for the legal knowledge base.
type LegalRepository interface {
	UpsertArticle(article *models.LegalArticle) error
	GetArticle(id string) (*models.LegalArticle, error)
	GetAllArticles() ([]models.LegalArticle, error)
	DeleteArticle(id string) error

	// Chunks are replaced wholesale per article on (re)ingestion.
	ReplaceChunks(articleID string, chunks []models.LegalChunk) error
	GetAllChunks() ([]models.LegalChunk, error)
	GetChunk(id string) (*models.LegalChunk, error)
}
