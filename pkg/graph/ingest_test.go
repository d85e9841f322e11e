package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"graphrag/pkg/ai"
	"graphrag/pkg/common"
)

type fakeExtractor struct {
	results map[string]*common.GraphExtractionResult
	errs    map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*common.GraphExtractionResult, error) {
	if err, ok := f.errs[text]; ok {
		return nil, err
	}
	if res, ok := f.results[text]; ok {
		return res, nil
	}
	return &common.GraphExtractionResult{}, nil
}

// orderUpserter records the kind of every upsert to verify ordering.
type orderUpserter struct {
	ops []string
}

func (o *orderUpserter) UpsertEntity(ctx context.Context, entity common.Entity) error {
	o.ops = append(o.ops, "entity:"+entity.ID)
	return nil
}

func (o *orderUpserter) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	o.ops = append(o.ops, "rel:"+rel.Source+"->"+rel.Target)
	return nil
}

func strPtr(s string) *string { return &s }

func TestIngestEmptyBatch(t *testing.T) {
	store := newFakeStore()
	builder := NewBuilder(&fakeExtractor{}, NewUpserter(store))

	results := builder.Ingest(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if len(store.nodes) != 0 || len(store.edges) != 0 {
		t.Error("empty batch must not mutate the store")
	}
}

func TestIngestUpsertsEntitiesAndRelationships(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{
		results: map[string]*common.GraphExtractionResult{
			"Alice works for Acme Corp.": {
				Entities: []common.Entity{
					{ID: "Alice", Type: "Person"},
					{ID: "Acme Corp.", Type: "Organization"},
				},
				Relationships: []common.Relationship{
					{Source: "Alice", Target: "Acme Corp.", Type: "works for", Description: strPtr("employment")},
				},
			},
		},
	}
	builder := NewBuilder(extractor, NewUpserter(store))

	results := builder.Ingest(context.Background(), []common.DocumentChunk{
		{Text: "Alice works for Acme Corp."},
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected chunk error: %v", results[0].Err)
	}
	if results[0].Entities != 2 || results[0].Relationships != 1 {
		t.Errorf("unexpected counts: %+v", results[0])
	}

	if store.nodes["Alice"] != "Person" || store.nodes["Acme Corp."] != "Organization" {
		t.Errorf("unexpected nodes: %v", store.nodes)
	}
	key := edgeKey{source: "Alice", target: "Acme Corp.", typ: "WORKS_FOR"}
	if _, ok := store.edges[key]; !ok {
		t.Errorf("expected Alice -WORKS_FOR-> Acme Corp., have %v", store.edges)
	}
}

func TestIngestEntitiesBeforeRelationships(t *testing.T) {
	upserter := &orderUpserter{}
	extractor := &fakeExtractor{
		results: map[string]*common.GraphExtractionResult{
			"chunk": {
				Entities: []common.Entity{
					{ID: "A", Type: "Concept"},
					{ID: "B", Type: "Concept"},
				},
				Relationships: []common.Relationship{
					{Source: "A", Target: "B", Type: "relates to"},
				},
			},
		},
	}
	builder := NewBuilder(extractor, upserter)

	builder.Ingest(context.Background(), []common.DocumentChunk{{Text: "chunk"}})

	relIdx := -1
	lastEntityIdx := -1
	for i, op := range upserter.ops {
		if strings.HasPrefix(op, "rel:") {
			relIdx = i
		} else {
			lastEntityIdx = i
		}
	}
	if relIdx == -1 || lastEntityIdx == -1 {
		t.Fatalf("expected both entity and relationship upserts, got %v", upserter.ops)
	}
	if relIdx < lastEntityIdx {
		t.Errorf("relationship upserted before all entities: %v", upserter.ops)
	}
}

func TestIngestIsolatesFailedChunks(t *testing.T) {
	store := newFakeStore()
	schemaErr := &ai.SchemaError{Raw: "not json", Err: errors.New("parse failed")}
	extractor := &fakeExtractor{
		results: map[string]*common.GraphExtractionResult{
			"good one": {Entities: []common.Entity{{ID: "One", Type: "Concept"}}},
			"good two": {Entities: []common.Entity{{ID: "Two", Type: "Concept"}}},
		},
		errs: map[string]error{
			"bad": schemaErr,
		},
	}
	builder := NewBuilder(extractor, NewUpserter(store))

	results := builder.Ingest(context.Background(), []common.DocumentChunk{
		{Text: "good one"},
		{Text: "bad"},
		{Text: "good two"},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy chunks must not fail: %+v", results)
	}

	var gotSchemaErr *ai.SchemaError
	if !errors.As(results[1].Err, &gotSchemaErr) {
		t.Errorf("expected schema error on chunk 1, got %v", results[1].Err)
	}

	if _, ok := store.nodes["One"]; !ok {
		t.Error("chunk before the failure was not committed")
	}
	if _, ok := store.nodes["Two"]; !ok {
		t.Error("chunk after the failure was not committed")
	}
}
