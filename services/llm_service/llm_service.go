package llm_service

import (
	"context"

	"github.com/serisow/ragone/ragtype"
)

// LLMService is one synchronous call per invocation: system instructions,
// prior conversation turns, and the current user content in, generated text
// out. Implementations do not retry; retry policy belongs to the caller.
type LLMService interface {
	Generate(ctx context.Context, system string, history []ragtype.Turn, user string) (string, error)
}
