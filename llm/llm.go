// Package llm provides the text-generation providers used to answer
// questions and extract structured data. The primary provider is Gemini;
// an OpenAI-compatible endpoint serves as the secondary when the primary
// model is unavailable.
package llm

import "context"

// Generator produces a completion for a prompt. Implementations classify
// provider failures into models.ErrModelUnavailable (the configured model
// is gone or not served) and models.ErrGenerationProvider (everything
// else), so callers can decide whether substituting a different provider
// makes sense. An empty string with a nil error means the provider
// answered but produced no text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
