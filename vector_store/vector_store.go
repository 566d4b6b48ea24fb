// Package vector_store holds document chunks keyed by their composite id and
// answers nearest-neighbor queries over their embeddings. Every chunk is
// tagged with its owning document id so a whole document can be evicted in
// one call.
package vector_store

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/ragtype"
)

type Store interface {
	// Upsert writes all chunks of one document. Chunk ids are composite
	// (document id + sequence index), so re-running an interrupted ingest for
	// the same document id overwrites rather than duplicates.
	Upsert(ctx context.Context, chunks []ragtype.Chunk) error

	// DeleteByDocument removes every chunk tagged with the document id and
	// reports how many were removed. Zero is not an error.
	DeleteByDocument(ctx context.Context, documentID int) (int64, error)

	// Query returns the top-k chunks nearest to the embedding, best first.
	// An empty result set is a successful query.
	Query(ctx context.Context, embedding pgvector.Vector, k int) ([]ragtype.RetrievalResult, error)

	// CountByDocument reports how many chunks the document currently owns.
	CountByDocument(ctx context.Context, documentID int) (int64, error)
}
