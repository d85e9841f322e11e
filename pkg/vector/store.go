// Package vector provides the persistent similarity index over document
// chunks, backed by SQLite with the sqlite-vec extension.
package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"graphrag/internal/util"
	"graphrag/pkg/ai"
	"graphrag/pkg/common"
)

func init() {
	sqlite_vec.Auto()
}

// embedRetries bounds attempts per chunk embedding before the batch
// fails.
const embedRetries = 3

// Store is the persistent vector index. Records are append-only: adding
// the same text twice stores two retrievable candidates, and nothing is
// ever updated in place.
type Store struct {
	db           *sql.DB
	client       ai.Client
	embeddingDim int
}

// New opens (or creates) the index database at the given path and
// initialises the schema, including the sqlite-vec virtual table. The
// embedding dimension is fixed for the lifetime of the database file.
func New(dbPath string, embeddingDim int, client ai.Client) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging index database: %w", err)
	}

	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	metadata TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(
	document_id INTEGER PRIMARY KEY,
	embedding FLOAT[%d]
);`, embeddingDim)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising index schema: %w", err)
	}

	return &Store{
		db:           db,
		client:       client,
		embeddingDim: embeddingDim,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add embeds each chunk and inserts it into the index. Embeddings are
// generated concurrently; inserts happen sequentially once all
// embeddings succeeded, so a failed embedding call leaves the index
// untouched for this batch.
func (s *Store) Add(ctx context.Context, chunks []common.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	eg, ectx := errgroup.WithContext(ctx)
	for i := range chunks {
		idx := i
		text := chunks[i].Text
		eg.Go(func() error {
			emb, err := util.RetryWithContext(ectx, embedRetries, func(ctx context.Context) ([]float32, error) {
				return s.client.GenerateEmbedding(ctx, []byte(text))
			})
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", idx, err)
			}
			embeddings[idx] = emb
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	for i, chunk := range chunks {
		var metadata any
		if len(chunk.Metadata) > 0 {
			encoded, err := json.Marshal(chunk.Metadata)
			if err != nil {
				return fmt.Errorf("encoding chunk metadata: %w", err)
			}
			metadata = string(encoded)
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO documents (text, metadata) VALUES (?, ?)",
			chunk.Text, metadata,
		)
		if err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		docID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading document id: %w", err)
		}

		serialized, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serializing embedding: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO vec_documents (document_id, embedding) VALUES (?, ?)",
			docID, serialized,
		)
		if err != nil {
			return fmt.Errorf("inserting embedding: %w", err)
		}
	}

	return tx.Commit()
}

// Search embeds the query and returns the stored text of the k nearest
// records, nearest first. It performs no reranking or filtering.
func (s *Store) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 3
	}

	embedding, err := s.client.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	serialized, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.text
		FROM vec_documents v
		JOIN documents d ON d.id = v.document_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serialized, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// Count returns the number of stored records, used by the health surface.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}
