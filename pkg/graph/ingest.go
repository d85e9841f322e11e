package graph

import (
	"context"

	"graphrag/pkg/common"
	"graphrag/pkg/logger"
)

// ChunkResult records the outcome of ingesting one chunk. A failed chunk
// carries the error that stopped it; counts reflect the upserts actually
// issued before the failure.
type ChunkResult struct {
	Index         int
	Entities      int
	Relationships int
	Err           error
}

// chunkExtractor lets tests substitute the model-backed Extractor.
type chunkExtractor interface {
	Extract(ctx context.Context, text string) (*common.GraphExtractionResult, error)
}

// entityUpserter is the store surface the pipeline writes through.
type entityUpserter interface {
	UpsertEntity(ctx context.Context, entity common.Entity) error
	UpsertRelationship(ctx context.Context, rel common.Relationship) error
}

// Builder orchestrates extraction and upserting over a batch of chunks.
// Each chunk is its own unit of effect: a failure is recorded and logged,
// and the pipeline proceeds to the next chunk. There is no transaction
// spanning the batch, so a mid-batch failure leaves a partially populated
// graph that converges on re-run.
type Builder struct {
	extractor chunkExtractor
	upserter  entityUpserter
}

// NewBuilder creates an ingestion pipeline from an extractor and an
// upserter.
func NewBuilder(extractor chunkExtractor, upserter entityUpserter) *Builder {
	return &Builder{
		extractor: extractor,
		upserter:  upserter,
	}
}

// Ingest runs extract-then-upsert for every chunk, entities before
// relationships within each chunk. It returns one ChunkResult per input
// chunk, in input order, so callers can assert exactly which chunks
// failed. An empty batch returns an empty result set and touches nothing.
func (b *Builder) Ingest(ctx context.Context, chunks []common.DocumentChunk) []ChunkResult {
	results := make([]ChunkResult, 0, len(chunks))

	logger.Info("[Graph] Ingesting chunk batch", "chunks", len(chunks))

	for i, chunk := range chunks {
		result := b.ingestChunk(ctx, i, chunk)
		if result.Err != nil {
			logger.Warn("[Graph] Chunk ingestion failed", "chunk", i, "err", result.Err)
		}
		results = append(results, result)
	}

	logger.Info("[Graph] Chunk batch complete")
	return results
}

func (b *Builder) ingestChunk(ctx context.Context, index int, chunk common.DocumentChunk) ChunkResult {
	result := ChunkResult{Index: index}

	extracted, err := b.extractor.Extract(ctx, chunk.Text)
	if err != nil {
		result.Err = err
		return result
	}

	// Relationships depend on node existence, so entities go first.
	for _, entity := range extracted.Entities {
		if err := b.upserter.UpsertEntity(ctx, entity); err != nil {
			result.Err = err
			return result
		}
		result.Entities++
	}

	for _, rel := range extracted.Relationships {
		if err := b.upserter.UpsertRelationship(ctx, rel); err != nil {
			result.Err = err
			return result
		}
		result.Relationships++
	}

	return result
}
