package vector_store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/ragtype"
)

// MemoryStore is a cosine-similarity vector index in process memory for tests
// and ephemeral mode.
type MemoryStore struct {
	mutex  sync.RWMutex
	chunks map[string]ragtype.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string]ragtype.Chunk),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, chunks []ragtype.Chunk) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

func (s *MemoryStore) DeleteByDocument(ctx context.Context, documentID int) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var deleted int64
	for id, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			delete(s.chunks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) Query(ctx context.Context, embedding pgvector.Vector, k int) ([]ragtype.RetrievalResult, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	query := embedding.Slice()
	results := make([]ragtype.RetrievalResult, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		results = append(results, ragtype.RetrievalResult{
			ChunkID:    chunk.ID,
			Text:       chunk.Text,
			Score:      cosineSimilarity(query, chunk.Embedding.Slice()),
			DocumentID: chunk.DocumentID,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) CountByDocument(ctx context.Context, documentID int) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int64
	for _, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
