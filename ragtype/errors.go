package ragtype

import "fmt"

// ValidationError signals malformed or disallowed input, e.g. an unsupported
// file type or an unknown model name.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError signals an unknown document or session id where existence is
// required.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IngestError wraps any chunking, embedding or upsert failure. By the time it
// is returned the pending document state has been rolled back.
type IngestError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest of %s failed during %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// DeleteInconsistencyError reports that the vector index and the metadata
// store could not be brought to matching states. VectorsDeleted tells the
// caller which half succeeded: false means the vector delete failed and the
// metadata row is untouched (still a consistent pair), true means the vectors
// are gone but the metadata row remains and a metadata-only retry is safe.
type DeleteInconsistencyError struct {
	DocumentID     int
	VectorsDeleted bool
	Err            error
}

func (e *DeleteInconsistencyError) Error() string {
	if e.VectorsDeleted {
		return fmt.Sprintf("document %d: vectors deleted but metadata row remains: %v", e.DocumentID, e.Err)
	}
	return fmt.Sprintf("document %d: vector index delete failed: %v", e.DocumentID, e.Err)
}

func (e *DeleteInconsistencyError) Unwrap() error { return e.Err }

// RetrievalError signals that the vector index was unreachable or the
// similarity query failed. An empty result set is not a RetrievalError.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError signals an LLM call failure or timeout, on either the
// rewrite or the answer step. The core produces no fallback content.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation with %s failed: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
