package ragtype

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusIndexed DocumentStatus = "indexed"
	StatusFailed  DocumentStatus = "failed"
)

type Document struct {
	ID         int            `json:"id"`
	Filename   string         `json:"filename"`
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"upload_timestamp"`
}

// Chunk is one bounded slice of a document's text together with its
// embedding. ID is always ChunkID(DocumentID, Index).
type Chunk struct {
	ID         string
	DocumentID int
	Index      int
	Text       string
	Embedding  pgvector.Vector
}

// ChunkID builds the composite chunk identifier so the vector index can
// delete every chunk of a document without enumerating ids.
func ChunkID(documentID, index int) string {
	return fmt.Sprintf("%d:%d", documentID, index)
}

// Turn is one user question plus the assistant answer within a session.
// Turns are immutable once appended.
type Turn struct {
	UserQuery string    `json:"user_query"`
	Answer    string    `json:"answer"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// RetrievalResult is transient query output, consumed within one request.
type RetrievalResult struct {
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	DocumentID int     `json:"document_id"`
}

// AnswerResult is the fixed chain result shape. Sources carries the distinct
// filenames backing the answer; its ordering is not part of the contract.
type AnswerResult struct {
	Answer    string
	Model     string
	Sources   []string
	Retrieved []RetrievalResult
}

type ProcessingStats struct {
	ExtractionTime float64 `json:"extraction_time"`
	EmbeddingTime  float64 `json:"embedding_time"`
}

type DocumentMetadata struct {
	WordCount       int             `json:"word_count"`
	ChunkCount      int             `json:"chunk_count"`
	ContentPreview  string          `json:"content_preview"`
	ContentType     string          `json:"content_type"`
	ProcessingStats ProcessingStats `json:"processing_stats"`
}
