// Package embedder provides the text-embedding providers behind a single
// interface: a local Ollama instance (the default) and the Gemini embedding
// API. Providers classify their failures into the shared error taxonomy so
// callers can tell transient outages apart from quota and credential
// problems.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github/itish2003/finsight/models"

	"golang.org/x/sync/errgroup"
)

// Embedder maps text to a fixed-length dense vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// maxInflightEmbeds bounds concurrent embedding requests during batch calls
// so a large insert does not swamp the provider.
const maxInflightEmbeds = 10

// EmbedWithRetry calls Embed and retries once on transient failure. Quota
// and auth errors are never retried; a second attempt cannot succeed.
func EmbedWithRetry(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vec, err := e.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}
	if errors.Is(err, models.ErrQuotaOrAuth) || ctx.Err() != nil {
		return nil, err
	}
	log.Printf("EMBED: retrying after transient error: %v", err)
	return e.Embed(ctx, text)
}

// embedConcurrently fans Embed out over texts with bounded concurrency. It
// fails on the first error; callers that need partial results fall back to
// per-item calls.
func embedConcurrently(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflightEmbeds)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// classifyStatus maps a provider HTTP status onto the shared error taxonomy.
func classifyStatus(status int, body string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", models.ErrQuotaOrAuth, status, body)
	default:
		return fmt.Errorf("%w: status %d: %s", models.ErrEmbeddingUnavailable, status, body)
	}
}
