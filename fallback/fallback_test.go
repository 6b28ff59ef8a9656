package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstReturnsInitialSuccess(t *testing.T) {
	var calls []string
	steps := []Step[string]{
		{Name: "primary", Run: func(ctx context.Context) (string, error) {
			calls = append(calls, "primary")
			return "answer", nil
		}},
		{Name: "secondary", Run: func(ctx context.Context) (string, error) {
			calls = append(calls, "secondary")
			return "other", nil
		}},
	}

	out, name, err := First(context.Background(), steps)

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "primary", name)
	assert.Equal(t, []string{"primary"}, calls, "later steps must not run after a success")
}

func TestFirstFallsThroughOnError(t *testing.T) {
	steps := []Step[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) { return 0, errors.New("a failed") }},
		{Name: "b", Run: func(ctx context.Context) (int, error) { return 42, nil }},
	}

	out, name, err := First(context.Background(), steps)

	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, "b", name)
}

func TestFirstReportsLastFailure(t *testing.T) {
	errB := errors.New("b failed")
	steps := []Step[string]{
		{Name: "a", Run: func(ctx context.Context) (string, error) { return "", errors.New("a failed") }},
		{Name: "b", Run: func(ctx context.Context) (string, error) { return "", errB }},
	}

	out, name, err := First(context.Background(), steps)

	assert.Empty(t, out)
	assert.Equal(t, "b", name)
	assert.ErrorIs(t, err, errB)
}

func TestFirstEmptyChain(t *testing.T) {
	_, _, err := First[string](context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestFirstStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	secondRan := false
	steps := []Step[string]{
		{Name: "a", Run: func(ctx context.Context) (string, error) {
			cancel()
			return "", errors.New("a failed")
		}},
		{Name: "b", Run: func(ctx context.Context) (string, error) {
			secondRan = true
			return "late", nil
		}},
	}

	_, _, err := First(ctx, steps)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, secondRan, "chain must stop once the context is cancelled")
}
