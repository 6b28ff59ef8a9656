package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/finsight/models"
)

// stubEmbedder scripts Embed by call number. Not safe for concurrent use;
// the retry tests drive it serially.
type stubEmbedder struct {
	calls int
	embed func(call int) ([]float32, error)
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.embed(s.calls)
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (s *stubEmbedder) Model() string { return "stub" }

func TestEmbedWithRetrySucceedsFirstTry(t *testing.T) {
	stub := &stubEmbedder{embed: func(int) ([]float32, error) {
		return []float32{1, 2}, nil
	}}

	vec, err := EmbedWithRetry(context.Background(), stub, "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	assert.Equal(t, 1, stub.calls)
}

func TestEmbedWithRetryRetriesTransientOnce(t *testing.T) {
	stub := &stubEmbedder{embed: func(call int) ([]float32, error) {
		if call == 1 {
			return nil, fmt.Errorf("%w: connection refused", models.ErrEmbeddingUnavailable)
		}
		return []float32{3}, nil
	}}

	vec, err := EmbedWithRetry(context.Background(), stub, "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vec)
	assert.Equal(t, 2, stub.calls)
}

func TestEmbedWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	stub := &stubEmbedder{embed: func(int) ([]float32, error) {
		return nil, fmt.Errorf("%w: still down", models.ErrEmbeddingUnavailable)
	}}

	_, err := EmbedWithRetry(context.Background(), stub, "hello")

	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
	assert.Equal(t, 2, stub.calls, "transient failures get exactly one retry")
}

func TestEmbedWithRetryNeverRetriesQuotaOrAuth(t *testing.T) {
	stub := &stubEmbedder{embed: func(int) ([]float32, error) {
		return nil, fmt.Errorf("%w: status 429", models.ErrQuotaOrAuth)
	}}

	_, err := EmbedWithRetry(context.Background(), stub, "hello")

	assert.ErrorIs(t, err, models.ErrQuotaOrAuth)
	assert.Equal(t, 1, stub.calls)
}

func TestEmbedWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubEmbedder{embed: func(int) ([]float32, error) {
		cancel()
		return nil, errors.New("interrupted")
	}}

	_, err := EmbedWithRetry(ctx, stub, "hello")

	assert.Error(t, err)
	assert.Equal(t, 1, stub.calls, "no retry once the context is done")
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, models.ErrQuotaOrAuth},
		{"forbidden", http.StatusForbidden, models.ErrQuotaOrAuth},
		{"rate limited", http.StatusTooManyRequests, models.ErrQuotaOrAuth},
		{"server error", http.StatusInternalServerError, models.ErrEmbeddingUnavailable},
		{"bad gateway", http.StatusBadGateway, models.ErrEmbeddingUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyStatus(tt.status, "body"), tt.want)
		})
	}
}

// lengthEmbedder maps each text to a one-element vector holding its length,
// so ordering mistakes in concurrent paths are visible.
type lengthEmbedder struct{}

func (lengthEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (e lengthEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedConcurrently(ctx, e, texts)
}

func (lengthEmbedder) Model() string { return "length" }

func TestEmbedConcurrentlyKeepsInputOrder(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}

	vectors, err := embedConcurrently(context.Background(), lengthEmbedder{}, texts)

	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vectors[i][0], "vector %d must align with its text", i)
	}
}

// failingEmbedder fails on one specific text.
type failingEmbedder struct{ failOn string }

func (f failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == f.failOn {
		return nil, fmt.Errorf("%w: refused %q", models.ErrEmbeddingUnavailable, text)
	}
	return []float32{1}, nil
}

func (f failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedConcurrently(ctx, f, texts)
}

func (failingEmbedder) Model() string { return "failing" }

func TestEmbedConcurrentlyFailsFast(t *testing.T) {
	_, err := embedConcurrently(context.Background(), failingEmbedder{failOn: "bad"}, []string{"ok", "bad", "fine"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}
