package document_store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

func (s *PostgresStore) Insert(ctx context.Context, filename string) (int, error) {
	var documentID int
	query := `INSERT INTO documents (filename, status) VALUES ($1, $2) RETURNING id`
	err := s.db.QueryRow(ctx, query, filename, ragtype.StatusPending).Scan(&documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document record: %w", err)
	}
	return documentID, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, documentID int, status ragtype.DocumentStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, status, documentID)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ragtype.NotFoundError{Kind: "document", ID: strconv.Itoa(documentID)}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, documentID int) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return false, fmt.Errorf("failed to delete document record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]ragtype.Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, filename, status, upload_timestamp
		FROM documents
		ORDER BY upload_timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]ragtype.Document, 0)
	for rows.Next() {
		var doc ragtype.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Status, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Filename(ctx context.Context, documentID int) (string, error) {
	var filename string
	err := s.db.QueryRow(ctx, `SELECT filename FROM documents WHERE id = $1`, documentID).Scan(&filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &ragtype.NotFoundError{Kind: "document", ID: strconv.Itoa(documentID)}
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve document filename: %w", err)
	}
	return filename, nil
}
