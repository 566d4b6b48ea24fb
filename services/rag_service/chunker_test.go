package rag_service

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestChunkerDeterministic(t *testing.T) {
	chunker := NewChunker(10, 2)

	words := make([]string, 0, 57)
	for i := 0; i < 57; i++ {
		words = append(words, fmt.Sprintf("word%d", i))
	}
	text := strings.Join(words, " ")

	first := chunker.Chunk(text)
	second := chunker.Chunk(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("same input must always produce the same chunk boundaries")
	}
	if len(first) == 0 {
		t.Fatal("expected at least one chunk")
	}
}

func TestChunkerOverlap(t *testing.T) {
	chunker := NewChunker(5, 2)
	text := "a b c d e f g h i j"

	chunks := chunker.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first starts with the last two words of its
	// predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		curr := strings.Fields(chunks[i])
		tail := prev[len(prev)-2:]
		if curr[0] != tail[0] || curr[1] != tail[1] {
			t.Errorf("chunk %d does not overlap its predecessor: %v vs tail %v", i, curr[:2], tail)
		}
	}
}

func TestChunkerSequenceIndexes(t *testing.T) {
	chunker := NewChunker(3, 1)

	chunks := chunker.ChunkDocument(42, "one two three four five six seven")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.DocumentID != 42 {
			t.Errorf("chunk %d has document id %d", i, chunk.DocumentID)
		}
		expectedID := fmt.Sprintf("42:%d", i)
		if chunk.ID != expectedID {
			t.Errorf("chunk %d has id %q, expected %q", i, chunk.ID, expectedID)
		}
	}
}

func TestChunkerEmptyText(t *testing.T) {
	chunker := NewChunker(10, 2)

	if chunks := chunker.Chunk("   \n\t  "); chunks != nil {
		t.Errorf("expected no chunks for blank text, got %d", len(chunks))
	}
}

func TestChunkerShortText(t *testing.T) {
	chunker := NewChunker(100, 20)

	chunks := chunker.Chunk("just a few words")
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0] != "just a few words" {
		t.Errorf("unexpected chunk text: %q", chunks[0])
	}
}
