package chat_store

import (
	"context"
	"fmt"
	"log/slog"

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

func (s *PostgresStore) Append(ctx context.Context, sessionID string, turn ragtype.Turn) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_turns (session_id, user_query, answer, model)
		VALUES ($1, $2, $3, $4)`,
		sessionID, turn.UserQuery, turn.Answer, turn.Model)
	if err != nil {
		return fmt.Errorf("failed to append chat turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, sessionID string) ([]ragtype.Turn, error) {
	// Ordering by the serial id rather than created_at keeps insertion order
	// stable even when two appends land in the same timestamp tick.
	rows, err := s.db.Query(ctx, `
		SELECT user_query, answer, model, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	defer rows.Close()

	turns := make([]ragtype.Turn, 0)
	for rows.Next() {
		var turn ragtype.Turn
		if err := rows.Scan(&turn.UserQuery, &turn.Answer, &turn.Model, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
