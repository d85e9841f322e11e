// Package openai implements ai.Client against any OpenAI-compatible
// chat-completions endpoint. Groq's endpoint is OpenAI-compatible, so the
// same adapter covers hosted llama models by overriding the base URL.
package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GraphOpenAIClient is an ai.Client backed by OpenAI-compatible APIs.
// Chat and embedding endpoints are configured independently so that a
// hosted chat model can be combined with a different embedding provider.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	chatModel       string
	extractionModel string
	embeddingModel  string
	embeddingDim    int

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration for creating a
// new GraphOpenAIClient.
//
// ChatModel is used for free-text generation, ExtractionModel for
// schema-constrained structured output, EmbeddingModel for embeddings.
// EmbeddingDim pins the vector dimension; shorter responses are
// zero-padded and longer ones truncated.
type NewGraphOpenAIClientParams struct {
	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string
	EmbeddingDim    int

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string
}

// NewGraphOpenAIClient creates a client configured with the provided
// parameters.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		ChatModel:       "llama-3.1-8b-instant",
//		ExtractionModel: "llama-3.1-8b-instant",
//		EmbeddingModel:  "text-embedding-3-small",
//		ChatURL:         "https://api.groq.com/openai/v1",
//		ChatKey:         os.Getenv("GROQ_API_KEY"),
//		EmbeddingKey:    os.Getenv("OPENAI_API_KEY"),
//	})
func NewGraphOpenAIClient(params NewGraphOpenAIClientParams) *GraphOpenAIClient {
	extractionModel := params.ExtractionModel
	if extractionModel == "" {
		extractionModel = params.ChatModel
	}

	return &GraphOpenAIClient{
		chatModel:       params.ChatModel,
		extractionModel: extractionModel,
		embeddingModel:  params.EmbeddingModel,
		embeddingDim:    params.EmbeddingDim,

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
