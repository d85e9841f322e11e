// Package ollama implements ai.Client against a locally-hosted Ollama
// server, covering both chat models and local embedding models.
package ollama

import (
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// GraphOllamaClient is an ai.Client backed by an Ollama server.
type GraphOllamaClient struct {
	chatModel       string
	extractionModel string
	embeddingModel  string
	embeddingDim    int

	Client *api.Client
}

// NewGraphOllamaClientParams contains configuration for creating a new
// GraphOllamaClient. BaseURL defaults to the local Ollama endpoint when
// empty.
type NewGraphOllamaClientParams struct {
	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string
	EmbeddingDim    int

	BaseURL string
}

// NewGraphOllamaClient creates a new Ollama-based AI client with the
// specified configuration.
func NewGraphOllamaClient(params NewGraphOllamaClientParams) (*GraphOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	} else {
		u, err = url.Parse("http://127.0.0.1:11434")
		if err != nil {
			return nil, err
		}
	}

	extractionModel := params.ExtractionModel
	if extractionModel == "" {
		extractionModel = params.ChatModel
	}

	return &GraphOllamaClient{
		chatModel:       params.ChatModel,
		extractionModel: extractionModel,
		embeddingModel:  params.EmbeddingModel,
		embeddingDim:    params.EmbeddingDim,
		Client:          api.NewClient(u, http.DefaultClient),
	}, nil
}
