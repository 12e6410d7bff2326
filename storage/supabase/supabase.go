// Package supabase implements storage.Storage on the Supabase Storage REST
// API using a service-role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/longscribe/httpclient"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/storage"
)

// UploadTimeout bounds a single request; audio uploads can be large.
const UploadTimeout = 5 * time.Minute

func init() {
	storage.RegisterFactory(storage.ProviderSupabase, func(_ context.Context, cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(cfg)
		if err != nil {
			return nil, err
		}
		log.Debug("supabase storage ready", logger.Fields("bucket", cfg.Bucket))
		return s, nil
	})
}

// Storage implements storage.Storage and storage.SignedURLProvider.
type Storage struct {
	client  *httpclient.Client
	baseURL string
	bucket  string
}

// NewStorage creates a Supabase storage client from cfg.URL, cfg.Bucket and
// cfg.SecretKey.
func NewStorage(cfg storage.Config) (*Storage, error) {
	if cfg.URL == "" || cfg.Bucket == "" || cfg.SecretKey == "" {
		return nil, errors.New("supabase: url, bucket and secret_key are required")
	}
	base := strings.TrimRight(cfg.URL, "/") + "/storage/v1"
	client, err := httpclient.New(httpclient.Config{
		Name:    "supabase",
		BaseURL: base,
		Timeout: UploadTimeout,
		Token:   cfg.SecretKey,
		Headers: map[string]string{"apikey": cfg.SecretKey},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: create client: %w", err)
	}
	return &Storage{client: client, baseURL: base, bucket: cfg.Bucket}, nil
}

func (s *Storage) objectPath(kind, path string) string {
	parts := []string{"object"}
	if kind != "" {
		parts = append(parts, kind)
	}
	parts = append(parts, s.bucket, escapePath(path))
	return "/" + strings.Join(parts, "/")
}

// Upload writes data from reader, replacing any existing object.
func (s *Storage) Upload(ctx context.Context, path string, reader io.Reader) error {
	_, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   s.objectPath("", path),
		Header: map[string]string{
			"Content-Type": "application/octet-stream",
			"x-upsert":     "true",
		},
		Body: reader,
	})
	if err != nil {
		return fmt.Errorf("storage: supabase upload: %w", err)
	}
	return nil
}

// Download returns a reader for the object at path.
func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: s.objectPath("", path)})
	if err != nil {
		if httpclient.IsNotFound(err) || httpclient.StatusCode(err) == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: supabase download: %w", err)
	}
	return io.NopCloser(bytes.NewReader(resp.Body)), nil
}

// Delete removes an object. Returns nil if the object does not exist.
func (s *Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.Do(ctx, httpclient.Request{Method: http.MethodDelete, Path: s.objectPath("", path)})
	if err != nil && !httpclient.IsNotFound(err) {
		return fmt.Errorf("storage: supabase delete: %w", err)
	}
	return nil
}

// Exists checks whether an object exists.
func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.Do(ctx, httpclient.Request{Method: http.MethodHead, Path: s.objectPath("", path)})
	if err != nil {
		if httpclient.IsNotFound(err) || httpclient.StatusCode(err) == http.StatusBadRequest {
			return false, nil
		}
		return false, fmt.Errorf("storage: supabase head: %w", err)
	}
	return true, nil
}

// SignedURL returns a signed URL valid for expiry.
func (s *Storage) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   s.objectPath("sign", path),
		Body:   map[string]int{"expiresIn": int(expiry.Seconds())},
	})
	if err != nil {
		return "", fmt.Errorf("storage: supabase sign: %w", err)
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("storage: supabase decode sign response: %w", err)
	}
	if result.SignedURL == "" {
		return "", errors.New("storage: supabase sign returned empty URL")
	}

	// Supabase returns a path relative to the storage API root.
	if !strings.HasPrefix(result.SignedURL, "http") {
		return s.baseURL + "/" + strings.TrimLeft(result.SignedURL, "/"), nil
	}
	return result.SignedURL, nil
}

func escapePath(p string) string {
	segs := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

var (
	_ storage.Storage           = (*Storage)(nil)
	_ storage.SignedURLProvider = (*Storage)(nil)
)
