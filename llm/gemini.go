package llm

import (
	"context"
	"fmt"
	"strings"

	"github/itish2003/finsight/models"

	"google.golang.org/genai"
)

// GeminiGenerator is the primary generation provider.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps an existing genai client for the given model.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// Name implements Generator.
func (g *GeminiGenerator) Name() string {
	return "gemini:" + g.model
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyGenerationError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}

// classifyGenerationError maps provider failures onto the two sentinel
// errors the pipeline branches on. The genai SDK does not expose stable
// error types for these cases, so matching on the message is the only
// option.
func classifyGenerationError(err error) error {
	msg := strings.ToLower(err.Error())
	unavailable := []string{
		"not found",
		"deprecated",
		"decommissioned",
		"unsupported model",
		"model is unavailable",
		"404",
	}
	for _, marker := range unavailable {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", models.ErrGenerationProvider, err)
}
