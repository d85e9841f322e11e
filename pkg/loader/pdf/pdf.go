package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	ledongthuc "github.com/ledongthuc/pdf"
	"golang.org/x/sync/singleflight"

	"graphrag/pkg/loader"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// PDFLoader wraps a byte-level ContentLoader and extracts the plain text
// from PDF content. Parsed results are cached per file.
type PDFLoader struct {
	loader loader.ContentLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewPDFLoader creates a PDF text extractor on top of the given loader.
func NewPDFLoader(inner loader.ContentLoader) *PDFLoader {
	return &PDFLoader{
		loader: inner,
		cache:  make(map[string][]byte),
	}
}

// GetFileText fetches the PDF bytes through the inner loader and returns
// the extracted plain text.
func (l *PDFLoader) GetFileText(ctx context.Context, file loader.File) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}

		text, err := parsePDF(content)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = text
		l.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func parsePDF(input []byte) ([]byte, error) {
	reader, err := ledongthuc.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extracting PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("reading PDF text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	return []byte(text), nil
}
