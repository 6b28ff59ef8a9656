package embedder

import (
	"context"
	"fmt"
	"strings"

	"github/itish2003/finsight/models"

	"google.golang.org/genai"
)

// GeminiEmbedder generates embeddings with the Gemini embedding API, for
// deployments without a local Ollama.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder reuses the shared genai client for embeddings.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

// Model returns the embedding model identifier.
func (g *GeminiEmbedder) Model() string { return g.model }

// Embed generates an embedding for a single text.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no embedding", models.ErrEmbeddingUnavailable)
	}
	return resp.Embeddings[0].Values, nil
}

// EmbedBatch embeds texts concurrently with a bounded number of in-flight
// requests.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedConcurrently(ctx, g, texts)
}

// classifyGeminiError distinguishes quota and credential failures from
// transient ones. The SDK surfaces API errors as formatted strings, so this
// matches on the stable status names.
func classifyGeminiError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"quota", "resource_exhausted", "permission_denied", "unauthenticated", "api key", "429", "403", "401"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", models.ErrQuotaOrAuth, err)
		}
	}
	return fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
}
