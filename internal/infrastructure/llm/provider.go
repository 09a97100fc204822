// Package llm abstracts the generation backends used for hybrid judgment.
// Two providers are supported: a local Ollama server and the OpenAI API.
package llm

import (
	"context"
	"fmt"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// Provider generates free-form text for a prompt.  Implementations carry
// their own timeout and authentication; callers pass a context for
// cancellation.
type Provider interface {
	// Generate returns the model's text completion for prompt.
	// Fails with GenerationUnavailable when the backend cannot be reached.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// NewProvider constructs the Provider selected by cfg.Provider.
func NewProvider(cfg config.LLMConfig, logger logging.Logger) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(cfg, logger), nil
	case "openai":
		return NewOpenAIProvider(cfg, logger), nil
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unknown llm provider %q", cfg.Provider))
	}
}
