package vector

import (
	"context"
	"path/filepath"
	"testing"

	"graphrag/pkg/ai"
	"graphrag/pkg/common"
)

// fixedEmbedder returns canned vectors keyed by input text so nearest
// neighbor results are deterministic.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (f *fixedEmbedder) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (f *fixedEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if v, ok := f.vectors[string(input)]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"the apple is red":    {1, 0, 0},
		"the banana is long":  {0, 1, 0},
		"the cherry is small": {0, 0, 1},
		"what color is the apple?": {0.9, 0.1, 0},
	}}

	store, err := New(filepath.Join(t.TempDir(), "vectors.db"), 3, embedder)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []common.DocumentChunk{
		{Text: "the apple is red", Metadata: map[string]string{"source": "fruit.txt"}},
		{Text: "the banana is long"},
		{Text: "the cherry is small"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := store.Search(ctx, "what color is the apple?", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0] != "the apple is red" {
		t.Errorf("expected nearest record first, got %q", got[0])
	}
}

func TestAddEmptyBatch(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(context.Background(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty index, got %d records", count)
	}
}

func TestReAddingCreatesDuplicateCandidates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunk := []common.DocumentChunk{{Text: "the apple is red"}}
	if err := store.Add(ctx, chunk); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, chunk); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("re-ingestion is append-only, expected 2 records, got %d", count)
	}
}
