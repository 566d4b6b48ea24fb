package document_service

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ragone/document_store"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/rag_service"
	"github.com/serisow/ragone/vector_store"
)

// wordHashEmbedder is a deterministic embedder: identical text always maps to
// an identical vector, so exact-text queries score 1.0.
type wordHashEmbedder struct {
	dims int
}

func (e wordHashEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vec := make([]float32, e.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	return pgvector.NewVector(vec), nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	return pgvector.Vector{}, errors.New("embedding provider unreachable")
}

// plainTextExtractor avoids real pdf/docx parsing in coordinator tests.
type plainTextExtractor struct{}

func (plainTextExtractor) ExtractText(filename string, data []byte) (string, error) {
	return string(data), nil
}

type failingVectorStore struct {
	vector_store.Store
}

func (failingVectorStore) DeleteByDocument(ctx context.Context, documentID int) (int64, error) {
	return 0, errors.New("vector index unreachable")
}

type failingDocDelete struct {
	document_store.Store
}

func (failingDocDelete) Delete(ctx context.Context, documentID int) (bool, error) {
	return false, errors.New("metadata store unreachable")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(embedder rag_service.Embedder) (*Coordinator, *document_store.MemoryStore, *vector_store.MemoryStore) {
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()
	pipeline := rag_service.NewPipeline(rag_service.NewChunker(5, 1), embedder, 2, testLogger())
	coordinator := NewCoordinator(docs, vectors, plainTextExtractor{}, pipeline, lockstore.New(), testLogger())
	return coordinator, docs, vectors
}

func TestIngestSuccess(t *testing.T) {
	coordinator, docs, vectors := newTestCoordinator(wordHashEmbedder{dims: 64})
	ctx := context.Background()

	documentID, metadata, err := coordinator.Ingest(ctx, "notes.html", []byte("the sky is blue and the grass is green"))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if metadata == nil || metadata.WordCount != 9 {
		t.Errorf("unexpected metadata: %+v", metadata)
	}

	listed, err := docs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 listed document, got %d", len(listed))
	}
	if listed[0].ID != documentID || listed[0].Status != ragtype.StatusIndexed {
		t.Errorf("expected document %d with status indexed, got %+v", documentID, listed[0])
	}

	count, err := vectors.CountByDocument(ctx, documentID)
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Error("expected at least one chunk in the vector index")
	}
}

func TestIngestRoundTripRetrieval(t *testing.T) {
	embedder := wordHashEmbedder{dims: 64}
	coordinator, _, vectors := newTestCoordinator(embedder)
	ctx := context.Background()

	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	documentID, _, err := coordinator.Ingest(ctx, "greek.html", []byte(text))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	// Query with the exact text of the first chunk.
	chunkText := strings.Join(strings.Fields(text)[:5], " ")
	embedding, _ := embedder.Embed(ctx, chunkText)
	results, err := vectors.Query(ctx, embedding, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	found := false
	for _, result := range results {
		if result.ChunkID == ragtype.ChunkID(documentID, 0) {
			found = true
		}
	}
	if !found {
		t.Errorf("exact chunk text did not retrieve its own chunk: %+v", results)
	}
}

func TestIngestUnsupportedType(t *testing.T) {
	coordinator, docs, _ := newTestCoordinator(wordHashEmbedder{dims: 8})

	_, _, err := coordinator.Ingest(context.Background(), "malware.exe", []byte("nope"))
	var validationErr *ragtype.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	listed, _ := docs.List(context.Background())
	if len(listed) != 0 {
		t.Errorf("rejected upload must not leave a document record, found %d", len(listed))
	}
}

func TestIngestEmbeddingFailureRollsBack(t *testing.T) {
	coordinator, docs, vectors := newTestCoordinator(failingEmbedder{})
	ctx := context.Background()

	_, _, err := coordinator.Ingest(ctx, "doomed.html", []byte("this will not embed"))
	var ingestErr *ragtype.IngestError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("expected IngestError, got %v", err)
	}

	listed, _ := docs.List(ctx)
	if len(listed) != 0 {
		t.Errorf("failed ingest left %d document records", len(listed))
	}
	count, _ := vectors.CountByDocument(ctx, 1)
	if count != 0 {
		t.Errorf("failed ingest left %d chunks in the vector index", count)
	}
}

func TestDeleteRemovesBothStores(t *testing.T) {
	coordinator, docs, vectors := newTestCoordinator(wordHashEmbedder{dims: 32})
	ctx := context.Background()

	documentID, _, err := coordinator.Ingest(ctx, "gone.html", []byte("soon to be deleted content here"))
	if err != nil {
		t.Fatal(err)
	}

	if err := coordinator.Delete(ctx, documentID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	count, _ := vectors.CountByDocument(ctx, documentID)
	if count != 0 {
		t.Errorf("%d chunks survived deletion", count)
	}
	listed, _ := docs.List(ctx)
	if len(listed) != 0 {
		t.Errorf("document still listed after deletion")
	}
}

func TestDeleteUnknownDocument(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(wordHashEmbedder{dims: 8})
	ctx := context.Background()

	err := coordinator.Delete(ctx, 12345)
	var notFound *ragtype.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteIsNotSilentlyIdempotent(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(wordHashEmbedder{dims: 8})
	ctx := context.Background()

	documentID, _, err := coordinator.Ingest(ctx, "once.html", []byte("delete me exactly once"))
	if err != nil {
		t.Fatal(err)
	}
	if err := coordinator.Delete(ctx, documentID); err != nil {
		t.Fatal(err)
	}

	err = coordinator.Delete(ctx, documentID)
	var notFound *ragtype.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("second delete must report NotFoundError, got %v", err)
	}
}

func TestDeleteVectorFailureLeavesMetadata(t *testing.T) {
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()
	embedder := wordHashEmbedder{dims: 16}
	pipeline := rag_service.NewPipeline(rag_service.NewChunker(5, 1), embedder, 1, testLogger())

	healthy := NewCoordinator(docs, vectors, plainTextExtractor{}, pipeline, lockstore.New(), testLogger())
	documentID, _, err := healthy.Ingest(context.Background(), "stuck.html", []byte("vector delete will fail"))
	if err != nil {
		t.Fatal(err)
	}

	broken := NewCoordinator(docs, failingVectorStore{Store: vectors}, plainTextExtractor{}, pipeline, lockstore.New(), testLogger())
	err = broken.Delete(context.Background(), documentID)

	var inconsistency *ragtype.DeleteInconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected DeleteInconsistencyError, got %v", err)
	}
	if inconsistency.VectorsDeleted {
		t.Error("vector delete failed; VectorsDeleted must be false")
	}

	// The pair must stay consistent: still listed, still searchable.
	listed, _ := docs.List(context.Background())
	if len(listed) != 1 {
		t.Errorf("metadata row must be untouched after a failed vector delete")
	}
	count, _ := vectors.CountByDocument(context.Background(), documentID)
	if count == 0 {
		t.Error("chunks must remain when the vector delete failed")
	}
}

func TestDeleteMetadataFailureReportsInconsistency(t *testing.T) {
	docs := document_store.NewMemoryStore()
	vectors := vector_store.NewMemoryStore()
	embedder := wordHashEmbedder{dims: 16}
	pipeline := rag_service.NewPipeline(rag_service.NewChunker(5, 1), embedder, 1, testLogger())

	healthy := NewCoordinator(docs, vectors, plainTextExtractor{}, pipeline, lockstore.New(), testLogger())
	documentID, _, err := healthy.Ingest(context.Background(), "half.html", []byte("metadata delete will fail"))
	if err != nil {
		t.Fatal(err)
	}

	broken := NewCoordinator(failingDocDelete{Store: docs}, vectors, plainTextExtractor{}, pipeline, lockstore.New(), testLogger())
	err = broken.Delete(context.Background(), documentID)

	var inconsistency *ragtype.DeleteInconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected DeleteInconsistencyError, got %v", err)
	}
	if !inconsistency.VectorsDeleted {
		t.Error("vectors were removed; VectorsDeleted must be true")
	}

	// Retrieval correctness is restored even though the row remains.
	count, _ := vectors.CountByDocument(context.Background(), documentID)
	if count != 0 {
		t.Errorf("%d chunks survived the vector delete phase", count)
	}
}
