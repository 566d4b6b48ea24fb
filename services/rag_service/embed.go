package rag_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"
)

type EmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Object string `json:"object"`
}

// EmbeddingService calls the OpenAI embeddings endpoint. One call per text,
// no retry; the request deadline comes from the client timeout and the
// caller's context.
type EmbeddingService struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	logger     *slog.Logger
}

func NewEmbeddingService(apiURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *EmbeddingService {
	return &EmbeddingService{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	var zero pgvector.Vector

	if s.apiKey == "" {
		return zero, fmt.Errorf("embedding API key not set")
	}

	requestBody := EmbeddingRequest{
		Input: text,
		Model: s.model,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return zero, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return zero, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp EmbeddingResponse
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&embeddingResp); err != nil {
		return zero, fmt.Errorf("failed to decode embedding response: %v", err)
	}

	if len(embeddingResp.Data) == 0 {
		return zero, fmt.Errorf("no embedding data received")
	}

	s.logger.Debug("Generated embedding",
		slog.Int("text_length", len(text)),
		slog.Int("total_tokens", embeddingResp.Usage.TotalTokens))

	return pgvector.NewVector(embeddingResp.Data[0].Embedding), nil
}
