package model_registry_test

import (
	"testing"

	"github.com/serisow/ragone/model_registry"
	"github.com/serisow/ragone/services/llm_service"
)

func TestRegisterAndGetLLMService(t *testing.T) {
	registry := model_registry.NewModelRegistry("openai")

	mockLLMService := &llm_service.MockLLMService{}
	registry.RegisterLLMService("mock_llm_service", mockLLMService)

	service, name, err := registry.GetLLMService("mock_llm_service")
	if err != nil {
		t.Fatalf("Expected to retrieve registered LLM service, got error: %v", err)
	}
	if name != "mock_llm_service" {
		t.Errorf("Expected resolved name 'mock_llm_service', got '%s'", name)
	}
	if service != mockLLMService {
		t.Errorf("Expected retrieved service to be the same as registered service")
	}
}

func TestGetUnregisteredLLMService(t *testing.T) {
	registry := model_registry.NewModelRegistry("openai")

	_, _, err := registry.GetLLMService("unknown_service")
	if err == nil {
		t.Fatal("Expected error when retrieving unregistered LLM service, got nil")
	}

	expectedErrorMsg := "unknown model: unknown_service"
	if err.Error() != expectedErrorMsg {
		t.Errorf("Expected error '%s', got '%s'", expectedErrorMsg, err.Error())
	}
}

func TestEmptyNameSelectsDefault(t *testing.T) {
	registry := model_registry.NewModelRegistry("openai")

	mockLLMService := &llm_service.MockLLMService{}
	registry.RegisterLLMService("openai", mockLLMService)

	service, name, err := registry.GetLLMService("")
	if err != nil {
		t.Fatalf("Expected default model to resolve, got error: %v", err)
	}
	if name != "openai" {
		t.Errorf("Expected resolved name 'openai', got '%s'", name)
	}
	if service != mockLLMService {
		t.Error("Expected the default service instance")
	}
}
