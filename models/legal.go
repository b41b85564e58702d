package models

import "time"

// LegalArticle is one statutory article in the knowledge base.
type LegalArticle struct {
	ID        string    `bson:"id" json:"id"`
	Code      string    `bson:"code" json:"code"` // e.g. "Código da Estrada"
	Article   string    `bson:"article" json:"article"`
	Title     string    `bson:"title,omitempty" json:"title,omitempty"`
	Body      string    `bson:"body" json:"body"`
	Tags      []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LegalChunk is an embedded slice of an article, the unit of retrieval.
type LegalChunk struct {
	ID        string    `bson:"id" json:"id"`
	ArticleID string    `bson:"articleId" json:"articleId"`
	Seq       int       `bson:"seq" json:"seq"`
	Text      string    `bson:"text" json:"text"`
	Embedding []float32 `bson:"embedding" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RetrievedChunk pairs a chunk with its similarity score for one query.
type RetrievedChunk struct {
	Chunk   LegalChunk   `json:"chunk"`
	Article LegalArticle `json:"article"`
	Score   float64      `json:"score"`
}
