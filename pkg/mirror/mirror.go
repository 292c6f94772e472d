// Package mirror copies release artifacts to S3-compatible object storage.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pacmancoder/cargo-monorepo/pkg/env"
)

const (
	AccessKeyVar = "ARTIFACTS_MIRROR_ACCESS_KEY"
	SecretKeyVar = "ARTIFACTS_MIRROR_SECRET_KEY"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// WithCredentials fills the access keys from the environment.
func (c Config) WithCredentials(src env.Source) (Config, error) {
	var err error
	if c.AccessKey, err = src.Required(AccessKeyVar, "Artifacts mirror access key"); err != nil {
		return Config{}, err
	}
	if c.SecretKey, err = src.Required(SecretKeyVar, "Artifacts mirror secret key"); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}

// ObjectKey places a file under <prefix>/<version>/.
func ObjectKey(prefix, version, file string) string {
	return path.Join(strings.Trim(prefix, "/"), version, filepath.Base(file))
}

// Store is the object storage a release mirrors its artifacts to.
type Store interface {
	// CheckBucket fails when the target bucket is missing or unreachable.
	CheckBucket(ctx context.Context) error
	Upload(ctx context.Context, key, file string) error
	// Location renders key for humans.
	Location(key string) string
}

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg Config) (*MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("create mirror client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) CheckBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("mirror bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("mirror bucket missing: %s", s.bucket)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, key, file string) error {
	contentType := mime.TypeByExtension(filepath.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.FPutObject(ctx, s.bucket, key, file, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("mirror upload %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Location(key string) string {
	return s.bucket + "/" + key
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
