package legal

import (
	"context"
	"fmt"
	"time"

	legalRepo "finehero/database/repository/legal"
	"finehero/models"
	"finehero/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLegalService is the production implementation.
type DefaultLegalService struct {
	Repo     legalRepo.LegalRepository
	Embedder Embedder
	Splitter *Splitter
	Index    *Index

	TopK     int
	MinScore float64
}

// NewDefaultLegalService wires the service and performs the initial index
// build from Mongo.
func NewDefaultLegalService(repo legalRepo.LegalRepository, embedder Embedder, splitter *Splitter, topK int, minScore float64) *DefaultLegalService {
	svc := &DefaultLegalService{
		Repo:     repo,
		Embedder: embedder,
		Splitter: splitter,
		Index:    NewIndex(),
		TopK:     topK,
		MinScore: minScore,
	}
	if n, err := svc.Reindex(context.Background()); err != nil {
		utils.GetLogger().Warn("legal: initial index build failed", zap.Error(err))
	} else {
		utils.GetLogger().Sugar().Infof("legal: index ready with %d chunks", n)
	}
	return svc
}

// Ingest chunks, embeds and persists articles, then refreshes the index.
func (s *DefaultLegalService) Ingest(ctx context.Context, inputs []ArticleInput) ([]models.LegalArticle, error) {
	logger := utils.GetLogger()
	var stored []models.LegalArticle

	for _, in := range inputs {
		if in.Body == "" {
			return nil, fmt.Errorf("article %s %s has an empty body", in.Code, in.Article)
		}

		article := models.LegalArticle{
			ID:      uuid.New().String(),
			Code:    in.Code,
			Article: in.Article,
			Title:   in.Title,
			Body:    in.Body,
			Tags:    in.Tags,
		}
		if err := s.Repo.UpsertArticle(&article); err != nil {
			return nil, fmt.Errorf("persist article %s: %w", article.ID, err)
		}

		pieces := s.Splitter.Split(in.Body)
		chunks := make([]models.LegalChunk, 0, len(pieces))
		for i, piece := range pieces {
			vec, err := s.Embedder.EmbedText(ctx, piece)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of article %s: %w", i, article.ID, err)
			}
			chunks = append(chunks, models.LegalChunk{
				ID:        uuid.New().String(),
				ArticleID: article.ID,
				Seq:       i,
				Text:      piece,
				Embedding: vec,
				CreatedAt: time.Now(),
			})
		}
		if err := s.Repo.ReplaceChunks(article.ID, chunks); err != nil {
			return nil, fmt.Errorf("persist chunks of article %s: %w", article.ID, err)
		}

		logger.Info("legal: article ingested",
			zap.String("articleId", article.ID),
			zap.String("code", article.Code),
			zap.Int("chunks", len(chunks)))
		stored = append(stored, article)
	}

	if _, err := s.Reindex(ctx); err != nil {
		return nil, fmt.Errorf("refresh index: %w", err)
	}
	return stored, nil
}

// Reindex rebuilds the in-memory index from Mongo.
func (s *DefaultLegalService) Reindex(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	chunks, err := s.Repo.GetAllChunks()
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}

	entries := make([]IndexChunk, 0, len(chunks))
	for _, c := range chunks {
		entries = append(entries, IndexChunk{
			ChunkID:   c.ID,
			ArticleID: c.ArticleID,
			Vector:    c.Embedding,
		})
	}
	s.Index.Replace(entries)
	return s.Index.Len(), nil
}

// Retrieve returns the top-k chunks most similar to the query.
func (s *DefaultLegalService) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = s.TopK
	}

	vec, err := s.Embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := s.Index.Search(vec, k, s.MinScore)
	results := make([]models.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		chunk, err := s.Repo.GetChunk(h.ChunkID)
		if err != nil {
			utils.GetLogger().Warn("legal: indexed chunk missing in store",
				zap.String("chunkId", h.ChunkID), zap.Error(err))
			continue
		}
		article, err := s.Repo.GetArticle(h.ArticleID)
		if err != nil {
			utils.GetLogger().Warn("legal: chunk references missing article",
				zap.String("articleId", h.ArticleID), zap.Error(err))
			continue
		}
		results = append(results, models.RetrievedChunk{
			Chunk:   *chunk,
			Article: *article,
			Score:   h.Score,
		})
	}
	return results, nil
}

// ListArticles returns the full knowledge base.
func (s *DefaultLegalService) ListArticles() ([]models.LegalArticle, error) {
	return s.Repo.GetAllArticles()
}

// DeleteArticle removes an article with its chunks and refreshes the index.
func (s *DefaultLegalService) DeleteArticle(ctx context.Context, id string) error {
	if err := s.Repo.DeleteArticle(id); err != nil {
		return err
	}
	_, err := s.Reindex(ctx)
	return err
}
