package io

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"graphrag/pkg/loader"
)

// DiskLoader reads file content from the local filesystem with caching.
// Concurrent requests for the same file share one read.
type DiskLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewDiskLoader creates a filesystem-backed content loader.
func NewDiskLoader() *DiskLoader {
	return &DiskLoader{
		cache: make(map[string][]byte),
	}
}

// GetFileText reads the file bytes from disk. Results are cached.
func (l *DiskLoader) GetFileText(ctx context.Context, file loader.File) ([]byte, error) {
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

		content, err := os.ReadFile(file.Path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
