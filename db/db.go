package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dbURL string) (*pgxpool.Pool, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var pool *pgxpool.Pool
	var err error
	maxRetries := 10
	retryDelay := time.Second * 10

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %v", err)
	}

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(context.Background(), config)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to the database")
				break
			}
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %v", maxRetries, err)
	}

	return pool, nil
}

// Migrate creates the vector extension and the three tables the service owns:
// the document registry, the chunk index and the per-session chat log.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id SERIAL PRIMARY KEY,
			filename TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			upload_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS document_chunks (
			id TEXT PRIMARY KEY,
			document_id INTEGER NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding vector(1536) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id
			ON document_chunks (document_id)`,
		`CREATE TABLE IF NOT EXISTS chat_turns (
			id SERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_query TEXT NOT NULL,
			answer TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_turns_session_id
			ON chat_turns (session_id, id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %v", err)
		}
	}
	return nil
}
