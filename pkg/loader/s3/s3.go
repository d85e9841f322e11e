package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"

	"graphrag/pkg/loader"
)

// S3Loader fetches file content from an S3 bucket. Objects are cached
// after the first download; concurrent requests for the same object share
// one fetch.
type S3Loader struct {
	bucket string
	client *awss3.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3Loader creates an S3-backed content loader on an existing client.
func NewS3Loader(bucket string, client *awss3.Client) *S3Loader {
	return &S3Loader{
		bucket: bucket,
		client: client,
		cache:  make(map[string][]byte),
	}
}

// GetFileText downloads the object at file.Path from the bucket.
func (l *S3Loader) GetFileText(ctx context.Context, file loader.File) ([]byte, error) {
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

		object, err := l.client.GetObject(ctx, &awss3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(file.Path),
		})
		if err != nil {
			return nil, err
		}
		defer object.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, object.Body); err != nil {
			return nil, err
		}
		content := buf.Bytes()

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
