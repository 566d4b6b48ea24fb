package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/serisow/ragone/ragtype"
	"go.uber.org/zap"
)

type AnthropicService struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	maxTokens  int
	logger     *zap.Logger
}

func NewAnthropicService(apiURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *AnthropicService {
	if apiURL == "" {
		apiURL = "https://api.anthropic.com/v1/messages"
	}
	return &AnthropicService{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  1024,
		logger:     logger,
	}
}

func (s *AnthropicService) Generate(ctx context.Context, system string, history []ragtype.Turn, user string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("Anthropic API key not set")
	}

	messages := make([]map[string]string, 0, len(history)*2+1)
	for _, turn := range history {
		messages = append(messages,
			map[string]string{"role": "user", "content": turn.UserQuery},
			map[string]string{"role": "assistant", "content": turn.Answer})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":      s.model,
		"system":     system,
		"messages":   messages,
		"max_tokens": s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Error calling Anthropic API", zap.Error(err))
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Anthropic API returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("Anthropic API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic API response")
}
