package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

var ErrValidation = errors.New("validation error")

const defaultURLTTL = time.Hour

// Presigner is the slice of the object-storage client the service needs.
type Presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Service issues short-lived signed GET URLs for stored photos. Keys are
// opaque object names; the service never reads object contents.
type Service struct {
	client Presigner
	bucket string
	ttl    time.Duration
}

type Config struct {
	Bucket string
	URLTTL time.Duration
}

func NewService(client *minio.Client, cfg Config) *Service {
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = defaultURLTTL
	}

	var presigner Presigner
	if client != nil {
		presigner = client
	}
	return &Service{
		client: presigner,
		bucket: cfg.Bucket,
		ttl:    ttl,
	}
}

// SignedPhotoURL returns a time-limited URL for the stored photo key.
func (s *Service) SignedPhotoURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrValidation
	}
	if s.client == nil || s.bucket == "" {
		return "", fmt.Errorf("object storage is not configured")
	}

	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign photo url: %w", err)
	}

	return signed.String(), nil
}
