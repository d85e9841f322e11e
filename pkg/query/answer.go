package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"graphrag/pkg/ai"
	"graphrag/pkg/logger"
)

// defaultTopK is the number of vector records retrieved per question.
const defaultTopK = 3

// retriever is the similarity-search surface of the vector store.
type retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// entityRecognizer extracts entity mentions from a question.
type entityRecognizer interface {
	Recognize(ctx context.Context, question string) ([]string, error)
}

// contextResolver renders graph-neighborhood context for entity mentions.
type contextResolver interface {
	ResolveContext(ctx context.Context, entities []string) string
}

// Chain answers questions by fusing vector similarity context with graph
// neighborhood context and running one grounded generation call over the
// combined block.
type Chain struct {
	client     ai.Client
	retriever  retriever
	recognizer entityRecognizer
	resolver   contextResolver
	topK       int
}

// NewChain wires an answer chain from its three retrieval parts and the
// model client used for the final generation.
func NewChain(client ai.Client, r retriever, rec entityRecognizer, res contextResolver) *Chain {
	return &Chain{
		client:     client,
		retriever:  r,
		recognizer: rec,
		resolver:   res,
		topK:       defaultTopK,
	}
}

// Answer runs the vector and graph branches concurrently, fuses their
// output into labeled context sections, and asks the model for a grounded
// answer. A failure in either branch or in the final call aborts the
// whole question; there is no partial answer.
func (c *Chain) Answer(ctx context.Context, question string) (string, error) {
	var (
		vectorContext []string
		graphContext  string
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		results, err := c.retriever.Search(groupCtx, question, c.topK)
		if err != nil {
			return fmt.Errorf("vector branch: %w", err)
		}
		vectorContext = results
		return nil
	})

	group.Go(func() error {
		entities, err := c.recognizer.Recognize(groupCtx, question)
		if err != nil {
			return fmt.Errorf("graph branch: %w", err)
		}
		graphContext = c.resolver.ResolveContext(groupCtx, entities)
		return nil
	})

	if err := group.Wait(); err != nil {
		return "", err
	}

	fused := FuseContext(vectorContext, graphContext)
	logger.Debug("[Chain] Context assembled", "vectorRecords", len(vectorContext), "graphBytes", len(graphContext))

	answer, err := c.client.GenerateCompletion(ctx, fmt.Sprintf(ai.AnswerPrompt, fused, question))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

// FuseContext renders the two retrieval branches as labeled sections.
// Both labels are always present so the model can tell an empty branch
// from a missing one.
func FuseContext(vectorResults []string, graphContext string) string {
	fused := "Vector Context:\n"
	for _, text := range vectorResults {
		fused += text + "\n"
	}
	fused += "\nGraph Context:\n" + graphContext
	return fused
}
