package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"graphrag/pkg/common"
	"graphrag/pkg/graph"
	"graphrag/pkg/loader"
	"graphrag/pkg/loader/pdf"
	"graphrag/pkg/logger"
)

// graphIngester is the graph side of the pipeline.
type graphIngester interface {
	Ingest(ctx context.Context, chunks []common.DocumentChunk) []graph.ChunkResult
}

// chunkIndexer is the vector side of the pipeline.
type chunkIndexer interface {
	Add(ctx context.Context, chunks []common.DocumentChunk) error
}

// fileChunker splits a document into token-bounded chunks.
type fileChunker interface {
	ChunkFile(ctx context.Context, file loader.File) ([]common.DocumentChunk, error)
}

// Ingestor processes ingest jobs: fetch, parse, chunk, then populate the
// graph and the vector index from the same chunk batch. The content
// source is fixed at construction, so the same pipeline serves object
// storage and local-directory deployments.
type Ingestor struct {
	source  loader.ContentLoader
	chunker fileChunker
	builder graphIngester
	index   chunkIndexer
}

// NewIngestor wires the worker-side ingestion pipeline on top of the
// given content source.
func NewIngestor(source loader.ContentLoader, chunker fileChunker, builder graphIngester, index chunkIndexer) *Ingestor {
	return &Ingestor{
		source:  source,
		chunker: chunker,
		builder: builder,
		index:   index,
	}
}

// ProcessIngestMessage handles one job from the ingest queue. Graph and
// vector population run concurrently over the same chunks. A chunk whose
// extraction fails is skipped on the graph side without failing the job;
// the job fails when the document cannot be loaded, the vector index
// rejects the batch, or every chunk failed extraction.
func (in *Ingestor) ProcessIngestMessage(ctx context.Context, msg string) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("decoding ingest job: %w", err)
	}

	params := loader.NewFileParams{
		ID:        data.DocumentID,
		Path:      data.FileKey,
		MaxTokens: data.MaxTokens,
		Loader:    in.source,
	}

	var file loader.File
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(data.FileName), "."))
	switch ext {
	case "pdf":
		params.Loader = pdf.NewPDFLoader(in.source)
		file = loader.NewPDFFile(params)
	default:
		file = loader.NewTextFile(params)
	}

	chunks, err := in.chunker.ChunkFile(ctx, file)
	if err != nil {
		return fmt.Errorf("chunking document %q: %w", data.DocumentID, err)
	}
	if len(chunks) == 0 {
		logger.Warn("[Queue] Document produced no chunks", "document_id", data.DocumentID)
		return nil
	}

	var results []graph.ChunkResult
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		results = in.builder.Ingest(groupCtx, chunks)
		return nil
	})

	group.Go(func() error {
		if err := in.index.Add(groupCtx, chunks); err != nil {
			return fmt.Errorf("indexing document %q: %w", data.DocumentID, err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d chunks of document %q failed extraction", failed, data.DocumentID)
	}
	if failed > 0 {
		logger.Warn("[Queue] Document partially ingested", "document_id", data.DocumentID, "failed_chunks", failed, "total_chunks", len(results))
	}

	logger.Info("[Queue] Document ingested", "document_id", data.DocumentID, "chunks", len(chunks))
	return nil
}
