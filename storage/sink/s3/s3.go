package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/storage/sink"
)

// s3Client is the subset of the minio client the sink needs.
type s3Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var newMinioClient = func(endpoint string, opts *minio.Options) (s3Client, error) {
	return minio.New(endpoint, opts)
}

// SinkImpl stages media in S3 or any compatible service (R2, Backblaze, MinIO).
type SinkImpl struct {
	client       s3Client
	bucket       string
	prefix       string
	endpointHost string
	secure       bool
	region       string
}

func NewS3Sink(cfg *config.S3SinkStrategy) (*SinkImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("s3 sink config is nil")
	}

	region := strings.TrimSpace(cfg.Region)
	if strings.EqualFold(region, "auto") {
		region = ""
	}

	endpointHost := strings.TrimSpace(cfg.Endpoint)
	if endpointHost == "" {
		if region == "" {
			endpointHost = "s3.amazonaws.com"
		} else {
			endpointHost = fmt.Sprintf("s3.%s.amazonaws.com", region)
		}
	} else if parsed, err := url.Parse(endpointHost); err == nil && parsed.Host != "" {
		endpointHost = parsed.Host
	}

	secure := !cfg.DisableSSL

	client, err := newMinioClient(endpointHost, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyId, cfg.SecretKeyId, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to verify s3 bucket %q: %w", cfg.Bucket, err)
	}

	if !exists {
		return nil, fmt.Errorf("s3 bucket %q does not exist or is not accessible", cfg.Bucket)
	}

	return &SinkImpl{
		client:       client,
		bucket:       cfg.Bucket,
		prefix:       strings.Trim(cfg.Prefix, "/"),
		endpointHost: endpointHost,
		secure:       secure,
		region:       cfg.Region,
	}, nil
}

// Upload writes the object under prefix/name, replacing any object with the same key.
func (s *SinkImpl) Upload(ctx context.Context, obj *sink.Object) (string, error) {
	if obj == nil || obj.Name == "" {
		return "", fmt.Errorf("object with a name is required")
	}

	key := s.objectKey(obj.Name)
	opts := minio.PutObjectOptions{ContentType: obj.ContentType}

	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(obj.Data), int64(len(obj.Data)), opts); err != nil {
		return "", fmt.Errorf("upload to s3 failed: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *SinkImpl) objectKey(name string) string {
	name = path.Base("/" + name)
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
