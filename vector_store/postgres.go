package vector_store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/ragtype"
)

type PostgresStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresStore) Upsert(ctx context.Context, chunks []ragtype.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
			chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text, chunk.Embedding)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk batch: %w", err)
		}
	}

	s.logger.Debug("Upserted chunks into vector index",
		slog.Int("document_id", chunks[0].DocumentID),
		slog.Int("chunk_count", len(chunks)))
	return nil
}

func (s *PostgresStore) DeleteByDocument(ctx context.Context, documentID int) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for document %d: %w", documentID, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Query(ctx context.Context, embedding pgvector.Vector, k int) ([]ragtype.RetrievalResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, content, 1 - (embedding <=> $1) AS score, document_id
		FROM document_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	defer rows.Close()

	results := make([]ragtype.RetrievalResult, 0, k)
	for rows.Next() {
		var result ragtype.RetrievalResult
		if err := rows.Scan(&result.ChunkID, &result.Text, &result.Score, &result.DocumentID); err != nil {
			return nil, fmt.Errorf("failed to scan retrieval result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (s *PostgresStore) CountByDocument(ctx context.Context, documentID int) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for document %d: %w", documentID, err)
	}
	return count, nil
}
