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

type OpenAIService struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewOpenAIService(apiURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIService {
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAIService{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (s *OpenAIService) Generate(ctx context.Context, system string, history []ragtype.Turn, user string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not set")
	}

	messages := make([]map[string]string, 0, len(history)*2+2)
	messages = append(messages, map[string]string{"role": "system", "content": system})
	for _, turn := range history {
		messages = append(messages,
			map[string]string{"role": "user", "content": turn.UserQuery},
			map[string]string{"role": "assistant", "content": turn.Answer})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":    s.model,
		"messages": messages,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Error calling OpenAI API", zap.Error(err))
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rawBody, openAIErr := extractOpenAIErrorDetails(resp)
		if openAIErr != nil {
			s.logger.Error("OpenAI API returned an error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", openAIErr.Error.Type),
				zap.String("message", openAIErr.Error.Message))
			return "", &OpenAIHttpError{
				StatusCode: resp.StatusCode,
				Message:    openAIErr.Error.Message,
				ErrorType:  openAIErr.Error.Type,
				RawBody:    rawBody,
			}
		}
		return "", fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, rawBody)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format from OpenAI API")
	}

	return result.Choices[0].Message.Content, nil
}
