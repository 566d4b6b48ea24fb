package llm_service

import (
	"context"

	"github.com/serisow/ragone/ragtype"
)

type MockLLMService struct {
	GenerateFunc func(ctx context.Context, system string, history []ragtype.Turn, user string) (string, error)
}

func (m *MockLLMService) Generate(ctx context.Context, system string, history []ragtype.Turn, user string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, history, user)
	}
	return "mock response", nil
}
