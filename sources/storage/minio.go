// Package storage archives raw crawl results to MinIO so a collection can
// be re-embedded later without re-crawling the site.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"websage/config"
	"websage/utils/types"
)

type ArchiveClient struct {
	client *minio.Client
	bucket string
}

func NewArchiveClient(cfg config.Config) (*ArchiveClient, error) {
	// local MinIO, no TLS
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}

	bucket := cfg.MinIOBucket
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &ArchiveClient{client: client, bucket: bucket}, nil
}

// UploadCrawl stores the full crawl result under crawls/<collection>.json
// and returns the object key.
func (a *ArchiveClient) UploadCrawl(ctx context.Context, collection string, result *types.CrawlResult) (string, error) {
	key := path.Join("crawls", fmt.Sprintf("%s.json", collection))

	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return key, nil
}

// GetCrawl loads an archived crawl result back by object key.
func (a *ArchiveClient) GetCrawl(ctx context.Context, key string) (*types.CrawlResult, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	var result types.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
