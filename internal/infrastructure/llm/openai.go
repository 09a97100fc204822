package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// OpenAIProvider generates text through the OpenAI chat-completion API, or
// any OpenAI-compatible endpoint when cfg.BaseURL is set.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      logging.Logger
}

// NewOpenAIProvider constructs a provider from cfg.
func NewOpenAIProvider(cfg config.LLMConfig, logger logging.Logger) *OpenAIProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.Named("llm.openai"),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New(errors.ErrCodePromptTooLong, "prompt must not be empty")
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: float32(p.temperature),
		MaxTokens:   p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGenerationUnavailable, "openai chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeGenerationUnavailable, "openai chat completion returned no choices")
	}

	p.logger.Debug("generation completed",
		logging.String("model", p.model),
		logging.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}
