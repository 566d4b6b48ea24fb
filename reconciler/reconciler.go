// Package reconciler sweeps up the two inconsistencies the lifecycle can
// leave behind: pending rows from ingests that died mid-flight, and indexed
// rows whose vectors are already gone because only the metadata half of a
// delete failed. Both are metadata-side leftovers; the vector index is never
// the dangling side by construction.
package reconciler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/serisow/ragone/document_store"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/vector_store"
)

type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

// Reindexer is the optional index maintenance hook; nil in ephemeral mode.
type Reindexer interface {
	ReindexIfNeeded(ctx context.Context) error
}

type Reconciler struct {
	docs         document_store.Store
	vectors      vector_store.Store
	locks        *lockstore.LockStore
	reindexer    Reindexer
	interval     time.Duration
	pendingTTL   time.Duration
	timeProvider TimeProvider
	logger       *slog.Logger
}

func New(
	docs document_store.Store,
	vectors vector_store.Store,
	locks *lockstore.LockStore,
	reindexer Reindexer,
	interval time.Duration,
	pendingTTL time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		docs:         docs,
		vectors:      vectors,
		locks:        locks,
		reindexer:    reindexer,
		interval:     interval,
		pendingTTL:   pendingTTL,
		timeProvider: &realTimeProvider{},
		logger:       logger,
	}
}

// Start runs sweeps until the context is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("Starting document reconciler",
		slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			r.logger.Info("Stopping document reconciler")
			return
		}
	}
}

// Sweep runs one reconciliation pass.
func (r *Reconciler) Sweep(ctx context.Context) {
	docs, err := r.docs.List(ctx)
	if err != nil {
		r.logger.Error("Reconciler could not list documents",
			slog.String("error", err.Error()))
		return
	}

	now := r.timeProvider.Now()
	for _, doc := range docs {
		switch doc.Status {
		case ragtype.StatusPending, ragtype.StatusFailed:
			if now.Sub(doc.UploadedAt) > r.pendingTTL {
				r.removeStale(ctx, doc)
			}
		case ragtype.StatusIndexed:
			r.removeIfDangling(ctx, doc)
		}
	}

	if r.reindexer != nil {
		if err := r.reindexer.ReindexIfNeeded(ctx); err != nil {
			r.logger.Error("Vector index maintenance failed",
				slog.String("error", err.Error()))
		}
	}
}

// removeStale cleans up a document whose ingest never completed. The vector
// side is cleared first, mirroring the delete ordering.
func (r *Reconciler) removeStale(ctx context.Context, doc ragtype.Document) {
	unlock := r.locks.Lock("doc:" + strconv.Itoa(doc.ID))
	defer unlock()

	if _, err := r.vectors.DeleteByDocument(ctx, doc.ID); err != nil {
		r.logger.Error("Could not clear vectors for stale document",
			slog.Int("document_id", doc.ID),
			slog.String("error", err.Error()))
		return
	}
	if _, err := r.docs.Delete(ctx, doc.ID); err != nil {
		r.logger.Error("Could not remove stale document record",
			slog.Int("document_id", doc.ID),
			slog.String("error", err.Error()))
		return
	}

	r.logger.Info("Removed stale document left by an interrupted ingest",
		slog.Int("document_id", doc.ID),
		slog.String("status", string(doc.Status)))
}

// removeIfDangling drops an indexed metadata row that no longer owns any
// chunks, the leftover of a delete whose metadata half failed.
func (r *Reconciler) removeIfDangling(ctx context.Context, doc ragtype.Document) {
	unlock := r.locks.Lock("doc:" + strconv.Itoa(doc.ID))
	defer unlock()

	count, err := r.vectors.CountByDocument(ctx, doc.ID)
	if err != nil {
		r.logger.Error("Could not count chunks for document",
			slog.Int("document_id", doc.ID),
			slog.String("error", err.Error()))
		return
	}
	if count > 0 {
		return
	}

	if _, err := r.docs.Delete(ctx, doc.ID); err != nil {
		r.logger.Error("Could not remove dangling document record",
			slog.Int("document_id", doc.ID),
			slog.String("error", err.Error()))
		return
	}

	r.logger.Info("Removed dangling document record with no chunks",
		slog.Int("document_id", doc.ID))
}
