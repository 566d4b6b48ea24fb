// Package document_store is the durable registry of uploaded documents.
// A row is created with status pending when an ingest starts, flipped to
// indexed or failed when the pipeline finishes, and removed on delete.
package document_store

import (
	"context"

	"github.com/serisow/ragone/ragtype"
)

type Store interface {
	// Insert registers a new document with status pending and returns its id.
	// Re-uploading an existing filename always creates a new row; chunks are
	// never updated in place.
	Insert(ctx context.Context, filename string) (int, error)

	SetStatus(ctx context.Context, documentID int, status ragtype.DocumentStatus) error

	// Delete removes the row. It returns false when no row matched.
	Delete(ctx context.Context, documentID int) (bool, error)

	// List returns all documents ordered by upload time, newest first.
	List(ctx context.Context) ([]ragtype.Document, error)

	// Filename resolves a document id for provenance reporting. It returns a
	// *ragtype.NotFoundError for an unknown id.
	Filename(ctx context.Context, documentID int) (string, error)
}
