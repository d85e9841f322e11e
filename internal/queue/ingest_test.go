package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"graphrag/pkg/common"
	"graphrag/pkg/graph"
	"graphrag/pkg/loader"
	"graphrag/pkg/loader/pdf"
)

// staticSource serves canned bytes for any file.
type staticSource struct {
	text string
}

func (s *staticSource) GetFileText(ctx context.Context, file loader.File) ([]byte, error) {
	return []byte(s.text), nil
}

// recordingChunker captures the file it was handed and returns canned
// chunks.
type recordingChunker struct {
	file   loader.File
	chunks []common.DocumentChunk
	err    error
}

func (c *recordingChunker) ChunkFile(ctx context.Context, file loader.File) ([]common.DocumentChunk, error) {
	c.file = file
	return c.chunks, c.err
}

type recordingBuilder struct {
	chunks  []common.DocumentChunk
	results []graph.ChunkResult
}

func (b *recordingBuilder) Ingest(ctx context.Context, chunks []common.DocumentChunk) []graph.ChunkResult {
	b.chunks = chunks
	if b.results != nil {
		return b.results
	}
	results := make([]graph.ChunkResult, len(chunks))
	for i := range results {
		results[i] = graph.ChunkResult{Index: i}
	}
	return results
}

type recordingIndexer struct {
	chunks []common.DocumentChunk
	err    error
}

func (x *recordingIndexer) Add(ctx context.Context, chunks []common.DocumentChunk) error {
	x.chunks = chunks
	return x.err
}

func ingestMsg(t *testing.T, fileName string) string {
	t.Helper()
	raw, err := json.Marshal(IngestJobMsg{
		DocumentID: "doc-1",
		FileKey:    "documents/doc-1.txt",
		FileName:   fileName,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestProcessIngestMessagePopulatesBothStores(t *testing.T) {
	source := &staticSource{text: "Alice works at Acme."}
	chunker := &recordingChunker{chunks: []common.DocumentChunk{{Text: "Alice works at Acme."}}}
	builder := &recordingBuilder{}
	indexer := &recordingIndexer{}

	in := NewIngestor(source, chunker, builder, indexer)
	if err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "notes.txt")); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(builder.chunks) != 1 || len(indexer.chunks) != 1 {
		t.Errorf("both stores must receive the chunk batch, got graph=%d vector=%d", len(builder.chunks), len(indexer.chunks))
	}
	if chunker.file.Loader != loader.ContentLoader(source) {
		t.Error("file must carry the source injected at construction")
	}
	if chunker.file.ID != "doc-1" || chunker.file.Path != "documents/doc-1.txt" {
		t.Errorf("unexpected file identity %q %q", chunker.file.ID, chunker.file.Path)
	}
}

func TestProcessIngestMessageWrapsPDFs(t *testing.T) {
	source := &staticSource{}
	chunker := &recordingChunker{chunks: []common.DocumentChunk{{Text: "x"}}}

	in := NewIngestor(source, chunker, &recordingBuilder{}, &recordingIndexer{})
	if err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "report.PDF")); err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, ok := chunker.file.Loader.(*pdf.PDFLoader); !ok {
		t.Errorf("expected a PDF-wrapped loader, got %T", chunker.file.Loader)
	}
	if chunker.file.Type != loader.FileTypePDF {
		t.Errorf("expected PDF file type, got %q", chunker.file.Type)
	}
}

func TestProcessIngestMessageInvalidJSON(t *testing.T) {
	in := NewIngestor(&staticSource{}, &recordingChunker{}, &recordingBuilder{}, &recordingIndexer{})
	if err := in.ProcessIngestMessage(context.Background(), "{not json"); err == nil {
		t.Fatal("expected error for malformed job")
	}
}

func TestProcessIngestMessageEmptyDocument(t *testing.T) {
	chunker := &recordingChunker{chunks: nil}
	builder := &recordingBuilder{}
	indexer := &recordingIndexer{}

	in := NewIngestor(&staticSource{}, chunker, builder, indexer)
	if err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "empty.txt")); err != nil {
		t.Fatalf("empty document must not fail the job, got %v", err)
	}
	if builder.chunks != nil || indexer.chunks != nil {
		t.Error("empty document must not touch the stores")
	}
}

func TestProcessIngestMessagePartialFailureSucceeds(t *testing.T) {
	chunks := []common.DocumentChunk{{Text: "a"}, {Text: "b"}}
	builder := &recordingBuilder{results: []graph.ChunkResult{
		{Index: 0, Err: errors.New("schema mismatch")},
		{Index: 1, Entities: 2},
	}}

	in := NewIngestor(&staticSource{}, &recordingChunker{chunks: chunks}, builder, &recordingIndexer{})
	if err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "notes.txt")); err != nil {
		t.Fatalf("partial failure must not fail the job, got %v", err)
	}
}

func TestProcessIngestMessageAllChunksFailed(t *testing.T) {
	chunks := []common.DocumentChunk{{Text: "a"}, {Text: "b"}}
	builder := &recordingBuilder{results: []graph.ChunkResult{
		{Index: 0, Err: errors.New("schema mismatch")},
		{Index: 1, Err: errors.New("schema mismatch")},
	}}

	in := NewIngestor(&staticSource{}, &recordingChunker{chunks: chunks}, builder, &recordingIndexer{})
	err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "notes.txt"))
	if err == nil || !strings.Contains(err.Error(), "failed extraction") {
		t.Fatalf("expected all-chunks-failed error, got %v", err)
	}
}

func TestProcessIngestMessageIndexerErrorFailsJob(t *testing.T) {
	chunks := []common.DocumentChunk{{Text: "a"}}
	indexer := &recordingIndexer{err: errors.New("disk full")}

	in := NewIngestor(&staticSource{}, &recordingChunker{chunks: chunks}, &recordingBuilder{}, indexer)
	if err := in.ProcessIngestMessage(context.Background(), ingestMsg(t, "notes.txt")); err == nil {
		t.Fatal("expected indexing error to fail the job")
	}
}
