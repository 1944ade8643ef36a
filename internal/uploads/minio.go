package uploads

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the settings for the object storage backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	MaxSize   int64
}

// MinioStore puts uploads into an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	maxSize   int64
}

// NewMinioStore connects to the object store and creates the bucket if it
// does not exist yet.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		maxSize:   cfg.MaxSize,
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, kind Kind, fh *multipart.FileHeader) (*File, error) {
	if err := Check(kind, fh, s.maxSize); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	objectName := GenerateName(fh.Filename)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, src, fh.Size, minio.PutObjectOptions{
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to minio: %w", err)
	}

	return &File{Path: s.objectURL(objectName), Name: fh.Filename}, nil
}

func (s *MinioStore) Remove(ctx context.Context, ref string) error {
	prefix := s.objectURL("")
	if !strings.HasPrefix(ref, prefix) {
		return fmt.Errorf("not an object reference in bucket %s: %q", s.bucket, ref)
	}
	return s.client.RemoveObject(ctx, s.bucket, path.Base(ref), minio.RemoveObjectOptions{})
}

func (s *MinioStore) objectURL(name string) string {
	return s.publicURL + "/" + s.bucket + "/" + name
}
