package embedder

import (
	"fmt"
	"net/http"

	"github/itish2003/finsight/config"

	"google.golang.org/genai"
)

// New builds the embedding provider selected by the configuration. The
// gemini provider reuses the shared genai client; ollama speaks plain HTTP
// through the shared http client.
func New(cfg config.EmbeddingConfig, httpClient *http.Client, geminiClient *genai.Client) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.Model), nil
	case "gemini":
		if geminiClient == nil {
			return nil, fmt.Errorf("embedding provider %q requires a gemini client", cfg.Provider)
		}
		return NewGeminiEmbedder(geminiClient, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
