package rag_service

import (
	"strings"

	"github.com/serisow/ragone/ragtype"
)

// Chunker splits extracted text into fixed-size word windows with a fixed
// overlap between consecutive windows. The split is deterministic: the same
// input always produces the same chunk boundaries and sequence indexes.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk returns the ordered chunk texts for a document, indexes implied by
// position. Embeddings are attached later by the pipeline.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkDocument wraps Chunk with composite ids for the given document.
func (c *Chunker) ChunkDocument(documentID int, text string) []ragtype.Chunk {
	texts := c.Chunk(text)
	chunks := make([]ragtype.Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, ragtype.Chunk{
			ID:         ragtype.ChunkID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       t,
		})
	}
	return chunks
}
