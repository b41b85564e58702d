package legal

import (
	"math"
	"sort"
	"sync"
)

// indexEntry is one chunk vector with its precomputed norm.
type indexEntry struct {
	ChunkID   string
	ArticleID string
	Vector    []float32
	Norm      float64
}

// Hit is one search result.
type Hit struct {
	ChunkID   string
	ArticleID string
	Score     float64
}

// Index is an in-memory cosine-similarity index over the legal chunks.
// It is rebuilt wholesale from Mongo on startup and after ingestion.
type Index struct {
	mu      sync.RWMutex
	entries []indexEntry
}

func NewIndex() *Index {
	return &Index{}
}

// IndexChunk is the input unit for Replace.
type IndexChunk struct {
	ChunkID   string
	ArticleID string
	Vector    []float32
}

// Replace swaps the full entry set.
func (ix *Index) Replace(chunks []IndexChunk) {
	entries := make([]indexEntry, 0, len(chunks))
	for _, c := range chunks {
		n := norm(c.Vector)
		if n == 0 {
			continue
		}
		entries = append(entries, indexEntry{
			ChunkID:   c.ChunkID,
			ArticleID: c.ArticleID,
			Vector:    c.Vector,
			Norm:      n,
		})
	}

	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns up to k hits with cosine similarity >= minScore, best first.
func (ix *Index) Search(query []float32, k int, minScore float64) []Hit {
	qn := norm(query)
	if qn == 0 || k <= 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		if len(e.Vector) != len(query) {
			continue
		}
		score := dot(query, e.Vector) / (qn * e.Norm)
		if score < minScore {
			continue
		}
		hits = append(hits, Hit{ChunkID: e.ChunkID, ArticleID: e.ArticleID, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
