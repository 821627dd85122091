package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config carries the object-storage settings for an S3-backed index store.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Store keeps index documents as objects named <prefix>/<repo>.json.
// It is the drop-in alternative to FileStore for shared environments.
type S3Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("index: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("index: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("index: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("index: init s3 client: %w", err)
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		region: region,
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) objectName(repository string) string {
	name := path.Base(strings.TrimSpace(repository)) + ".json"
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Store) Load(ctx context.Context, repository string) (*ASTIndex, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("index: s3 init: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(repository), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("index: s3 get: %w", err)
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("index: s3 read %s: %w", repository, err)
	}
	var idx ASTIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("index: decode %s: %w", repository, err)
	}
	if idx.FileSummaries == nil {
		idx.FileSummaries = map[string]Summary{}
	}
	return &idx, nil
}

func (s *S3Store) Save(ctx context.Context, idx *ASTIndex) error {
	if idx == nil {
		return fmt.Errorf("index: nil index")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("index: s3 init: %w", err)
	}
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode %s: %w", idx.Repository, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.objectName(idx.Repository),
		bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("index: s3 put %s: %w", idx.Repository, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, repository string) (bool, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return false, fmt.Errorf("index: s3 init: %w", err)
	}
	_, err := s.client.StatObject(ctx, s.bucket, s.objectName(repository), minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
