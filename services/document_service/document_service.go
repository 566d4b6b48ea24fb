// Package document_service coordinates the document lifecycle across the
// metadata registry and the vector index, which cannot be updated
// transactionally together. Ingest rolls back to nothing on any failure;
// delete clears the vector index first, because a dangling metadata row is a
// visible and independently cleanable inconsistency while a dangling vector
// silently corrupts future retrieval.
package document_service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/serisow/ragone/document_store"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/rag_service"
	"github.com/serisow/ragone/vector_store"
)

// TextExtractor turns raw upload bytes into plain text.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// ChunkEmbedder produces the full embedded chunk set for a document, or
// nothing.
type ChunkEmbedder interface {
	ChunkAndEmbed(ctx context.Context, documentID int, text string) ([]ragtype.Chunk, error)
}

type Coordinator struct {
	docs      document_store.Store
	vectors   vector_store.Store
	extractor TextExtractor
	pipeline  ChunkEmbedder
	locks     *lockstore.LockStore
	logger    *slog.Logger
}

func NewCoordinator(
	docs document_store.Store,
	vectors vector_store.Store,
	extractor TextExtractor,
	pipeline ChunkEmbedder,
	locks *lockstore.LockStore,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		docs:      docs,
		vectors:   vectors,
		extractor: extractor,
		pipeline:  pipeline,
		locks:     locks,
		logger:    logger,
	}
}

// Ingest registers the document, runs extraction and the chunk/embed
// pipeline, writes the chunks and flips the status to indexed. Any failure
// after registration rolls everything back; no partially visible document
// survives a failed ingest.
func (c *Coordinator) Ingest(ctx context.Context, filename string, content []byte) (int, *ragtype.DocumentMetadata, error) {
	if !rag_service.SupportedExtension(filename) {
		return 0, nil, &ragtype.ValidationError{
			Message: fmt.Sprintf("unsupported file type for %s", filename),
		}
	}

	documentID, err := c.docs.Insert(ctx, filename)
	if err != nil {
		return 0, nil, &ragtype.IngestError{Filename: filename, Stage: "register", Err: err}
	}

	unlock := c.locks.Lock(docKey(documentID))
	defer unlock()

	metadata := &ragtype.DocumentMetadata{
		ContentType: rag_service.MimeType(filename),
	}

	extractStart := time.Now()
	text, err := c.extractor.ExtractText(filename, content)
	if err != nil {
		return 0, nil, c.rollback(ctx, documentID, filename, "extract", err)
	}
	metadata.ProcessingStats.ExtractionTime = time.Since(extractStart).Seconds()
	metadata.WordCount = len(strings.Fields(text))
	if len(text) > 250 {
		metadata.ContentPreview = text[:250] + "..."
	} else {
		metadata.ContentPreview = text
	}

	embedStart := time.Now()
	chunks, err := c.pipeline.ChunkAndEmbed(ctx, documentID, text)
	if err != nil {
		return 0, nil, c.rollback(ctx, documentID, filename, "embed", err)
	}
	metadata.ProcessingStats.EmbeddingTime = time.Since(embedStart).Seconds()
	metadata.ChunkCount = len(chunks)

	if err := c.vectors.Upsert(ctx, chunks); err != nil {
		return 0, nil, c.rollback(ctx, documentID, filename, "upsert", err)
	}

	if err := c.docs.SetStatus(ctx, documentID, ragtype.StatusIndexed); err != nil {
		return 0, nil, c.rollback(ctx, documentID, filename, "finalize", err)
	}

	c.logger.Info("Successfully ingested document",
		slog.String("filename", filename),
		slog.Int("document_id", documentID),
		slog.Int("chunk_count", len(chunks)))

	return documentID, metadata, nil
}

// rollback removes the pending metadata row and best-effort clears any chunks
// already written for the document, then wraps the original failure.
func (c *Coordinator) rollback(ctx context.Context, documentID int, filename, stage string, cause error) error {
	if _, err := c.vectors.DeleteByDocument(ctx, documentID); err != nil {
		c.logger.Error("Rollback could not clear vector index",
			slog.Int("document_id", documentID),
			slog.String("error", err.Error()))
	}
	if _, err := c.docs.Delete(ctx, documentID); err != nil {
		c.logger.Error("Rollback could not remove pending document record",
			slog.Int("document_id", documentID),
			slog.String("error", err.Error()))
		// Leave a marker for the reconciler rather than a row that looks
		// mid-ingest forever.
		if err := c.docs.SetStatus(ctx, documentID, ragtype.StatusFailed); err != nil {
			c.logger.Error("Rollback could not mark document as failed",
				slog.Int("document_id", documentID),
				slog.String("error", err.Error()))
		}
	}

	c.logger.Error("Ingest failed and was rolled back",
		slog.String("filename", filename),
		slog.Int("document_id", documentID),
		slog.String("stage", stage),
		slog.String("error", cause.Error()))

	return &ragtype.IngestError{Filename: filename, Stage: stage, Err: cause}
}

// Delete removes a document from both stores, vector index first. If the
// vector delete fails the metadata row is left untouched so the pair stays
// consistent. If only the metadata delete fails, retrieval correctness is
// already restored and the caller gets a DeleteInconsistencyError it can
// resolve by retrying.
func (c *Coordinator) Delete(ctx context.Context, documentID int) error {
	unlock := c.locks.Lock(docKey(documentID))
	defer unlock()

	if _, err := c.docs.Filename(ctx, documentID); err != nil {
		return err
	}

	deleted, err := c.vectors.DeleteByDocument(ctx, documentID)
	if err != nil {
		return &ragtype.DeleteInconsistencyError{
			DocumentID:     documentID,
			VectorsDeleted: false,
			Err:            err,
		}
	}

	ok, err := c.docs.Delete(ctx, documentID)
	if err != nil {
		return &ragtype.DeleteInconsistencyError{
			DocumentID:     documentID,
			VectorsDeleted: true,
			Err:            err,
		}
	}
	if !ok {
		// Row vanished between the existence check and the delete; under the
		// per-id lock this means another path already finished the cleanup.
		c.logger.Warn("Document record already removed",
			slog.Int("document_id", documentID))
	}

	c.logger.Info("Successfully deleted document",
		slog.Int("document_id", documentID),
		slog.Int64("chunks_removed", deleted))

	return nil
}

func (c *Coordinator) List(ctx context.Context) ([]ragtype.Document, error) {
	return c.docs.List(ctx)
}

func docKey(documentID int) string {
	return "doc:" + strconv.Itoa(documentID)
}
