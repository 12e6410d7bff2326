package storage

import (
	"bytes"
	"context"
	"io"
)

// ReadAll downloads the object at path into memory.
func ReadAll(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// WriteBytes uploads data to path, replacing any existing object.
func WriteBytes(ctx context.Context, s Storage, path string, data []byte) error {
	return s.Upload(ctx, path, bytes.NewReader(data))
}
