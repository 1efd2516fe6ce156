// Package ollama wires a locally hosted Ollama server as a generation
// and embedding backend through its OpenAI-compatible API.
package ollama

import (
	"strings"

	adapter "github.com/Abraxas-365/finextract/adapters/openai"
	"github.com/Abraxas-365/finextract/embedding"
)

// DefaultBaseURL is the default address of a local Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// Ollama does not check API keys, but the OpenAI client requires one.
const placeholderKey = "ollama"

// NewLLM creates a generation backend served by a local Ollama model.
func NewLLM(baseURL, model string) *adapter.OpenAILLM {
	return adapter.NewCompatibleLLM(apiBase(baseURL), placeholderKey, model)
}

// NewEmbedder creates an embedding backend served by a local Ollama model.
func NewEmbedder(baseURL, model string, opts ...embedding.Option) *adapter.OpenAIEmbedder {
	opts = append([]embedding.Option{embedding.WithModel(model)}, opts...)
	return adapter.NewCompatibleEmbedder(apiBase(baseURL), placeholderKey, opts...)
}

func apiBase(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}
