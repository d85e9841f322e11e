package query

import (
	"context"
	"fmt"
	"strings"

	"graphrag/pkg/ai"
)

// Recognizer extracts the entity mentions a user question is about, as
// plain strings for downstream substring matching against the graph.
type Recognizer struct {
	client ai.Client
}

// NewRecognizer creates a Recognizer backed by the given model client.
func NewRecognizer(client ai.Client) *Recognizer {
	return &Recognizer{client: client}
}

// Recognize asks the model for a comma-separated entity list and splits
// it mechanically. An empty model response yields a single empty entity,
// which downstream containment matching treats as match-everything; that
// keeps the graph branch alive instead of silently returning nothing.
func (r *Recognizer) Recognize(ctx context.Context, question string) ([]string, error) {
	response, err := r.client.GenerateCompletion(ctx, fmt.Sprintf(ai.RecognizePrompt, question))
	if err != nil {
		return nil, fmt.Errorf("recognizing entities: %w", err)
	}

	parts := strings.Split(response, ",")
	entities := make([]string, 0, len(parts))
	for _, part := range parts {
		entities = append(entities, strings.TrimSpace(part))
	}
	return entities, nil
}
