package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"graphrag/internal/util"
)

// NewS3Client builds an S3 client from the AWS_* environment. Path-style
// addressing keeps MinIO and other S3-compatible endpoints working.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnvString("AWS_REGION", "us-east-1")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// PutFile uploads a document under documents/<id><ext> and returns the
// object key. The extension is taken from the original file name so the
// worker can pick the right parser later.
func PutFile(ctx context.Context, client *s3.Client, bucket, id, name string, body io.ReadSeeker) (string, error) {
	ext := filepath.Ext(name)
	key := fmt.Sprintf("documents/%s%s", id, ext)

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %q to S3: %w", key, err)
	}
	return key, nil
}
