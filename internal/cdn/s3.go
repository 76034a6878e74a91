package cdn

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures an S3-compatible asset host.
type S3Options struct {
	Endpoint  string // host[:port] or a full URL
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string // base URL objects are served from; defaults to the endpoint
	UseSSL    bool
}

// S3 stores locale files as objects in a bucket.
type S3 struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewS3 creates a client for the bucket described by opts.
func NewS3(opts S3Options) (*S3, error) {
	if opts.Endpoint == "" {
		return nil, wrapError(CodeInvalid, false, fmt.Errorf("endpoint is required"))
	}
	if opts.Bucket == "" {
		return nil, wrapError(CodeInvalid, false, fmt.Errorf("bucket is required"))
	}

	endpoint := opts.Endpoint
	useSSL := opts.UseSSL
	if u, err := url.Parse(opts.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: useSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, wrapError(CodeUnreachable, true, fmt.Errorf("minio client: %w", err))
	}

	base := opts.PublicURL
	if base == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		base = scheme + "://" + endpoint + "/" + opts.Bucket
	}

	return &S3{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(base, "/"),
	}, nil
}

// Name identifies the provider in logs and check output.
func (s *S3) Name() string {
	return "s3 (" + s.bucket + ")"
}

func objectKey(resourceID string) string {
	return resourceID + ".json"
}

// Upload stores data under resourceID, replacing any previous object.
func (s *S3) Upload(ctx context.Context, resourceID string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(resourceID), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  "application/json; charset=utf-8",
			CacheControl: "no-cache",
		})
	if err != nil {
		return classifyS3Error(err)
	}
	return nil
}

// Delete removes the object stored under resourceID.
func (s *S3) Delete(ctx context.Context, resourceID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(resourceID), minio.RemoveObjectOptions{}); err != nil {
		return classifyS3Error(err)
	}
	return nil
}

// URL returns the public URL of resourceID.
func (s *S3) URL(resourceID string) string {
	return s.publicURL + "/" + objectKey(resourceID)
}

// Check verifies the bucket exists and the credentials can see it.
func (s *S3) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return classifyS3Error(err)
	}
	if !exists {
		return wrapError(CodeNotFound, false, fmt.Errorf("bucket %s does not exist", s.bucket))
	}
	return nil
}
