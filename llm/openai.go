package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator is the secondary generation provider. It talks to any
// OpenAI-compatible endpoint, which covers the hosted API as well as local
// servers that speak the same protocol.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a client for the given key and model. When
// baseURL is non-empty it overrides the default API endpoint.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Name implements Generator.
func (o *OpenAIGenerator) Name() string {
	return "openai:" + o.model
}

// Generate implements Generator.
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
