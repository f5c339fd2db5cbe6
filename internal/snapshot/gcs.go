package snapshot

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSSink saves page bodies to a Google Cloud Storage bucket.
type GCSSink struct {
	client   *storage.Client
	bucket   string
	prefix   string
	maxBytes int64
}

// NewGCSSink initializes a GCS client and verifies the bucket is reachable.
// Authentication uses Application Default Credentials.
func NewGCSSink(ctx context.Context, bucket, prefix string, maxBytes int64) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}
	return &GCSSink{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Save uploads the body to bucket/prefix/name and returns the object URI.
func (s *GCSSink) Save(ctx context.Context, name string, body []byte) (string, error) {
	if s.maxBytes > 0 && int64(len(body)) > s.maxBytes {
		return "", fmt.Errorf("page size %d exceeds max %d", len(body), s.maxBytes)
	}
	object := name
	if s.prefix != "" {
		object = s.prefix + "/" + name
	}
	wc := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "text/html; charset=utf-8"
	if _, err := wc.Write(body); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write GCS object %s: %w", object, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for %s: %w", object, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, object), nil
}

// Close releases the underlying client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
