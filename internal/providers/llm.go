package providers

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// LLMConfig configures the prompt enhancement provider.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

const enhanceSystemPrompt = "You rewrite prompts for visual media generation. " +
	"Expand the user's prompt with concrete cinematic detail (subject, lighting, " +
	"composition, lens, mood) in under 120 words. Return only the rewritten prompt."

// LLMProvider enhances text prompts through a chat model.
type LLMProvider struct {
	model llms.Model
}

// NewLLMProvider builds an OpenAI-compatible chat client. BaseURL may point
// at any compatible endpoint.
func NewLLMProvider(cfg LLMConfig) (*LLMProvider, error) {
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeGenerationFailed, "failed to create llm client").WithCause(err)
	}
	return &LLMProvider{model: model}, nil
}

// NewLLMProviderWithModel wraps an existing model, used by tests.
func NewLLMProviderWithModel(model llms.Model) *LLMProvider {
	return &LLMProvider{model: model}
}

// GenerateText runs the enhancement prompt and returns the rewritten text.
func (p *LLMProvider) GenerateText(ctx context.Context, prompt string, imageRefs []string) (string, error) {
	human := llms.TextParts(llms.ChatMessageTypeHuman, prompt)
	for _, ref := range imageRefs {
		human.Parts = append(human.Parts, llms.ImageURLPart(ref))
	}
	resp, err := p.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, enhanceSystemPrompt),
		human,
	})
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "llm call failed").WithCause(err)
	}
	if len(resp.Choices) == 0 {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "llm returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Content)
	if out == "" {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "llm returned empty content")
	}
	return out, nil
}
