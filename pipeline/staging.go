package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/storage"
)

// Stager uploads a local audio file and returns a URL the transcription
// provider can fetch.
type Stager struct {
	storage storage.Storage
	prefix  string
	expiry  time.Duration
	log     *logger.Logger
}

// NewStager creates a Stager. s must implement storage.SignedURLProvider.
func NewStager(s storage.Storage, prefix string, expiry time.Duration, log *logger.Logger) (*Stager, error) {
	if _, ok := s.(storage.SignedURLProvider); !ok {
		return nil, errors.InvalidInput("storage.provider", "audio staging needs a backend that signs URLs (s3 or supabase)")
	}
	if expiry <= 0 {
		expiry = storage.DefaultSignedURLExpiry
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Stager{storage: s, prefix: prefix, expiry: expiry, log: log.WithComponent("staging")}, nil
}

// Key returns the object key for a file staged by runID.
func (s *Stager) Key(runID, file string) string {
	return path.Join(s.prefix, runID, filepath.Base(file))
}

// Stage uploads file under <prefix>/<run-id>/<basename> and signs it.
func (s *Stager) Stage(ctx context.Context, runID, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", errors.InvalidInput("audio_file", err.Error()).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	key := s.Key(runID, file)
	if err := s.storage.Upload(ctx, key, f); err != nil {
		return "", errors.StorageError(key, err)
	}

	url, err := s.storage.(storage.SignedURLProvider).SignedURL(ctx, key, s.expiry)
	if err != nil {
		return "", errors.StorageError(key, fmt.Errorf("sign url: %w", err))
	}
	s.log.WithContext(ctx).Info("audio staged", logger.Fields(logger.FieldPath, key, "expires_in", s.expiry.String()))
	return url, nil
}
