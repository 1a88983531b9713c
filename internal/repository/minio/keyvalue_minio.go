// Package minio persists key-value blobs as objects in a MinIO bucket, one
// object per key.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

type KeyValueStore struct {
	client *minio.Client
	bucket string
}

// NewKeyValueStore ensures the bucket exists and returns a store over it.
func NewKeyValueStore(ctx context.Context, client *minio.Client, bucket string) (*KeyValueStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %q: %w", bucket, err)
		}
	}
	return &KeyValueStore{client: client, bucket: bucket}, nil
}

func (s *KeyValueStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ports.ErrKeyNotFound
		}
		return nil, fmt.Errorf("minio: read %q: %w", key, err)
	}
	return data, nil
}

func (s *KeyValueStore) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("minio: put %q: %w", key, err)
	}
	return nil
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)
