package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned (wrapped) when an object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Storage is a flat namespace of slash-separated object keys. Artifacts,
// prompt templates and staged audio all go through it.
type Storage interface {
	// Upload replaces the object at key with the contents of r.
	Upload(ctx context.Context, key string, r io.Reader) error
	// Download opens the object at key. A missing key yields an error
	// matching ErrNotFound. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SignedURLProvider is implemented by backends that can hand out
// time-limited URLs for private objects. Audio staging requires it.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// IsNotFound reports whether err marks a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
