package legal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/go-redis/redis/v8"
	"google.golang.org/api/option"
)

// Embedder turns text into a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder embeds via the Gemini embedding model.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
}

func NewGeminiEmbedder(apiKey, modelName string) *GeminiEmbedder {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}
	return &GeminiEmbedder{model: client.EmbeddingModel(modelName)}
}

func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty embedding")
	}
	return resp.Embedding.Values, nil
}

const embedCachePrefix = "embed:"

// CachedEmbedder fronts another embedder with a Redis cache keyed by the
// SHA-256 of the text. Both retrieval queries and ingestion chunks go through
// it: queries repeat across fines with the same fields, and a reingested
// article mostly produces chunks that were embedded before.
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
}

func NewCachedEmbedder(inner Embedder, client *redis.Client, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl}
}

func (e *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	key := embedCachePrefix + hex.EncodeToString(sum[:])

	if data, err := e.client.Get(ctx, key).Result(); err == nil {
		var vec []float32
		if err := json.Unmarshal([]byte(data), &vec); err == nil {
			return vec, nil
		}
	}

	vec, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(vec); err == nil {
		_ = e.client.Set(ctx, key, b, e.ttl).Err()
	}
	return vec, nil
}
