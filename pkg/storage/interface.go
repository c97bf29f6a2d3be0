// Package storage keeps tenant assets such as logos on the local disk or
// in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrNotFound = errors.New("object not found")

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Storage is an object store addressed by slash separated keys.
type Storage interface {
	// Write stores r under key. size is -1 when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read opens key; the caller closes the reader. Missing keys yield
	// ErrNotFound.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns a URL clients can fetch key from, valid for at least
	// expires when the backend signs URLs.
	GetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Type  string      `mapstructure:"type"`
	Local LocalConfig `mapstructure:"local"`
	S3    S3Config    `mapstructure:"s3"`
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.Local)
	case TypeS3:
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
