// Package model_registry maps the model names a chat request may carry to
// the LLM service implementations constructed at startup.
package model_registry

import (
	"fmt"

	"github.com/serisow/ragone/services/llm_service"
)

type ModelRegistry struct {
	llmServices map[string]llm_service.LLMService
	defaultName string
}

func NewModelRegistry(defaultName string) *ModelRegistry {
	return &ModelRegistry{
		llmServices: make(map[string]llm_service.LLMService),
		defaultName: defaultName,
	}
}

// RegisterLLMService registers an LLM service under a request-facing name.
func (mr *ModelRegistry) RegisterLLMService(name string, service llm_service.LLMService) {
	mr.llmServices[name] = service
}

// GetLLMService returns the service for a model name; an empty name selects
// the default model.
func (mr *ModelRegistry) GetLLMService(name string) (llm_service.LLMService, string, error) {
	if name == "" {
		name = mr.defaultName
	}
	service, ok := mr.llmServices[name]
	if !ok {
		return nil, name, fmt.Errorf("unknown model: %s", name)
	}
	return service, name, nil
}

func (mr *ModelRegistry) DefaultModel() string {
	return mr.defaultName
}
