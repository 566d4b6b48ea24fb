package rag_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/ragtype"
	"golang.org/x/sync/errgroup"
)

// Embedder produces a vector embedding for one text.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// Pipeline turns extracted text into an ordered, embedded chunk set. The
// result is all-or-nothing: if any chunk's embedding call fails, no chunks
// are returned, so the coordinator has a clean unit to roll back.
type Pipeline struct {
	chunker     *Chunker
	embedder    Embedder
	concurrency int
	logger      *slog.Logger
}

func NewPipeline(chunker *Chunker, embedder Embedder, concurrency int, logger *slog.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		chunker:     chunker,
		embedder:    embedder,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (p *Pipeline) ChunkAndEmbed(ctx context.Context, documentID int, text string) ([]ragtype.Chunk, error) {
	chunks := p.chunker.ChunkDocument(documentID, text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %d produced no chunks", documentID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range chunks {
		i := i
		g.Go(func() error {
			embedding, err := p.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ID, err)
			}
			chunks[i].Embedding = embedding
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("Chunked and embedded document",
		slog.Int("document_id", documentID),
		slog.Int("chunk_count", len(chunks)))

	return chunks, nil
}
