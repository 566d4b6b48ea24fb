package reconciler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/document_store"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/vector_store"
)

type mockTimeProvider struct {
	mutex       sync.Mutex
	currentTime time.Time
}

func (mtp *mockTimeProvider) Now() time.Time {
	mtp.mutex.Lock()
	defer mtp.mutex.Unlock()
	return mtp.currentTime
}

func (mtp *mockTimeProvider) Add(d time.Duration) {
	mtp.mutex.Lock()
	defer mtp.mutex.Unlock()
	mtp.currentTime = mtp.currentTime.Add(d)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReconciler(docs document_store.Store, vectors vector_store.Store, ttl time.Duration) (*Reconciler, *mockTimeProvider) {
	r := New(docs, vectors, lockstore.New(), nil, time.Minute, ttl, testLogger())
	mtp := &mockTimeProvider{currentTime: time.Now()}
	r.timeProvider = mtp
	return r, mtp
}

func seedChunk(t *testing.T, vectors vector_store.Store, documentID int) {
	t.Helper()
	err := vectors.Upsert(context.Background(), []ragtype.Chunk{{
		ID:         ragtype.ChunkID(documentID, 0),
		DocumentID: documentID,
		Index:      0,
		Text:       "content",
		Embedding:  pgvector.NewVector([]float32{1, 0}),
	}})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSweepRemovesStalePending(t *testing.T) {
	ctx := context.Background()
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()

	staleID, _ := docs.Insert(ctx, "crashed.pdf")
	seedChunk(t, vectors, staleID)

	r, mtp := newTestReconciler(docs, vectors, 30*time.Minute)
	mtp.Add(time.Hour)

	r.Sweep(ctx)

	listed, _ := docs.List(ctx)
	if len(listed) != 0 {
		t.Fatalf("expected stale pending document to be removed, got %v", listed)
	}
	count, _ := vectors.CountByDocument(ctx, staleID)
	if count != 0 {
		t.Errorf("expected partial chunks to be cleared, %d remain", count)
	}
}

func TestSweepKeepsFreshPending(t *testing.T) {
	ctx := context.Background()
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()

	if _, err := docs.Insert(ctx, "inflight.pdf"); err != nil {
		t.Fatal(err)
	}

	// Within the TTL the document may still be an ingest in progress.
	r, _ := newTestReconciler(docs, vectors, 30*time.Minute)
	r.Sweep(ctx)

	listed, _ := docs.List(ctx)
	if len(listed) != 1 {
		t.Fatalf("fresh pending document must survive the sweep, got %v", listed)
	}
}

func TestSweepRemovesDanglingIndexed(t *testing.T) {
	ctx := context.Background()
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()

	danglingID, _ := docs.Insert(ctx, "dangling.pdf")
	if err := docs.SetStatus(ctx, danglingID, ragtype.StatusIndexed); err != nil {
		t.Fatal(err)
	}

	healthyID, _ := docs.Insert(ctx, "healthy.pdf")
	if err := docs.SetStatus(ctx, healthyID, ragtype.StatusIndexed); err != nil {
		t.Fatal(err)
	}
	seedChunk(t, vectors, healthyID)

	r, _ := newTestReconciler(docs, vectors, 30*time.Minute)
	r.Sweep(ctx)

	listed, _ := docs.List(ctx)
	if len(listed) != 1 || listed[0].ID != healthyID {
		t.Fatalf("expected only the healthy document to remain, got %v", listed)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()
	r, _ := newTestReconciler(docs, vectors, 30*time.Minute)
	r.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after context cancellation")
	}
}
