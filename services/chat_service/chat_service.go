// Package chat_service turns a session's conversation plus the vector index
// into a grounded, attributable answer. Per request the chain runs: optional
// standalone-question rewrite, top-k retrieval, context assembly, final
// generation. Turn persistence stays with the caller so a failed generation
// never produces a logged turn.
package chat_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/serisow/ragone/chat_store"
	"github.com/serisow/ragone/model_registry"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/rag_service"
	"github.com/serisow/ragone/vector_store"
)

const rewriteInstructions = "Given the chat history and the user question, rephrase the question as a standalone question that can be understood without the chat history. Return only the rephrased question."

const answerInstructions = "You are a helpful assistant. Use the following context to answer:\n\n%s"

// FilenameResolver resolves a document id to its filename for provenance.
type FilenameResolver interface {
	Filename(ctx context.Context, documentID int) (string, error)
}

type Chain struct {
	history  chat_store.Store
	embedder rag_service.Embedder
	vectors  vector_store.Store
	docs     FilenameResolver
	registry *model_registry.ModelRegistry
	topK     int
	logger   *slog.Logger
}

func NewChain(
	history chat_store.Store,
	embedder rag_service.Embedder,
	vectors vector_store.Store,
	docs FilenameResolver,
	registry *model_registry.ModelRegistry,
	topK int,
	logger *slog.Logger,
) *Chain {
	if topK <= 0 {
		topK = 2
	}
	return &Chain{
		history:  history,
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		registry: registry,
		topK:     topK,
		logger:   logger,
	}
}

// Answer runs the full chain for one question. The returned result carries
// the resolved model name so the caller can persist the turn; the chain
// itself never appends to the session log.
func (c *Chain) Answer(ctx context.Context, sessionID, question, model string) (ragtype.AnswerResult, error) {
	var result ragtype.AnswerResult

	llm, modelName, err := c.registry.GetLLMService(model)
	if err != nil {
		return result, &ragtype.ValidationError{Message: err.Error()}
	}
	result.Model = modelName

	history, err := c.history.History(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("failed to load session history: %w", err)
	}

	// A first question needs no rewrite: there is no history to untangle it
	// from, and no LLM call is spent on it.
	effectiveQuery := question
	if len(history) > 0 {
		rewritten, err := llm.Generate(ctx, rewriteInstructions, history, question)
		if err != nil {
			return result, &ragtype.GenerationError{Model: modelName, Err: err}
		}
		effectiveQuery = strings.TrimSpace(rewritten)
		if effectiveQuery == "" {
			effectiveQuery = question
		}
		c.logger.Debug("Rewrote question as standalone query",
			slog.String("session_id", sessionID),
			slog.String("standalone_query", effectiveQuery))
	}

	embedding, err := c.embedder.Embed(ctx, effectiveQuery)
	if err != nil {
		return result, &ragtype.RetrievalError{Err: err}
	}

	retrieved, err := c.vectors.Query(ctx, embedding, c.topK)
	if err != nil {
		return result, &ragtype.RetrievalError{Err: err}
	}
	result.Retrieved = dedupeByChunkID(retrieved)

	// An empty result set is not an error: generation proceeds with degraded
	// grounding because a useful answer may still exist purely from history.
	contextText := assembleContext(result.Retrieved)

	sources, err := c.resolveSources(ctx, result.Retrieved)
	if err != nil {
		return result, err
	}
	result.Sources = sources

	answer, err := llm.Generate(ctx, fmt.Sprintf(answerInstructions, contextText), history, question)
	if err != nil {
		return result, &ragtype.GenerationError{Model: modelName, Err: err}
	}
	result.Answer = answer

	c.logger.Info("Answered chat question",
		slog.String("session_id", sessionID),
		slog.String("model", modelName),
		slog.Int("retrieved_chunks", len(result.Retrieved)),
		slog.Int("source_count", len(result.Sources)))

	return result, nil
}

// dedupeByChunkID keeps the first (highest-scored) occurrence of each chunk.
// Overlapping chunks of one document can be ranked separately; their text
// must not repeat in the context.
func dedupeByChunkID(results []ragtype.RetrievalResult) []ragtype.RetrievalResult {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]ragtype.RetrievalResult, 0, len(results))
	for _, result := range results {
		if _, ok := seen[result.ChunkID]; ok {
			continue
		}
		seen[result.ChunkID] = struct{}{}
		deduped = append(deduped, result)
	}
	return deduped
}

func assembleContext(results []ragtype.RetrievalResult) string {
	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Text)
	}
	return strings.Join(texts, "\n\n")
}

// resolveSources maps retrieved chunks to the distinct set of filenames that
// backed them. A chunk whose document row vanished mid-request is skipped:
// under vector-first deletion this is a transient race, not a data defect.
func (c *Chain) resolveSources(ctx context.Context, results []ragtype.RetrievalResult) ([]string, error) {
	seen := make(map[int]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, result := range results {
		if _, ok := seen[result.DocumentID]; ok {
			continue
		}
		seen[result.DocumentID] = struct{}{}

		filename, err := c.docs.Filename(ctx, result.DocumentID)
		if err != nil {
			var notFound *ragtype.NotFoundError
			if errors.As(err, &notFound) {
				c.logger.Warn("Retrieved chunk references a missing document",
					slog.Int("document_id", result.DocumentID),
					slog.String("chunk_id", result.ChunkID))
				continue
			}
			return nil, fmt.Errorf("failed to resolve source filename: %w", err)
		}
		sources = append(sources, filename)
	}
	return sources, nil
}
