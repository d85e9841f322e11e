package ollama

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 384

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama. Empty input yields a
// zero vector of the configured dimension.
func (c *GraphOllamaClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	dim := c.embeddingDim
	if dim <= 0 {
		dim = defaultDimensions
	}
	if len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}

	res, err := c.Client.Embed(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, dim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= dim {
				break
			}
			out = append(out, float32(val))
		}
	}
	if len(out) < dim {
		padded := make([]float32, dim)
		copy(padded, out)
		out = padded
	}
	return out, nil
}
