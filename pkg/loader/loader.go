package loader

import (
	"context"
	"fmt"
)

type FileType string

const (
	FileTypeText FileType = "text"
	FileTypePDF  FileType = "pdf"
)

// File is a document handed to the ingestion pipeline. The raw bytes are
// fetched lazily through the attached ContentLoader so the same File value
// works for disk, object storage, or test fixtures.
type File struct {
	ID        string
	Path      string
	Type      FileType
	MaxTokens int
	Loader    ContentLoader
}

// NewFileParams holds the common fields for the File constructors.
type NewFileParams struct {
	ID        string
	Path      string
	MaxTokens int
	Loader    ContentLoader
}

// NewTextFile creates a File whose content is used verbatim as text.
func NewTextFile(params NewFileParams) File {
	return File{
		ID:        params.ID,
		Path:      params.Path,
		Type:      FileTypeText,
		MaxTokens: params.MaxTokens,
		Loader:    params.Loader,
	}
}

// NewPDFFile creates a File whose content must be parsed out of a PDF
// before chunking. The caller is expected to wire a PDF-aware loader.
func NewPDFFile(params NewFileParams) File {
	return File{
		ID:        params.ID,
		Path:      params.Path,
		Type:      FileTypePDF,
		MaxTokens: params.MaxTokens,
		Loader:    params.Loader,
	}
}

// GetText retrieves the text content of the file via its loader.
func (f *File) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("file %q has no loader", f.ID)
	}
	return f.Loader.GetFileText(ctx, *f)
}

// ContentLoader fetches the text content of a File. Implementations may
// read from disk, object storage, or decode container formats first.
type ContentLoader interface {
	GetFileText(ctx context.Context, file File) ([]byte, error)
}

// CacheKey identifies a file for loader-level caching.
func CacheKey(file File) string {
	return fmt.Sprintf("%s:%s", file.ID, file.Path)
}
