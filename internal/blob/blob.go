// Package blob stores exported report files.
package blob

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("blob: object not found")
	ErrPresignUnsupported = errors.New("blob: presign not supported")
)

// Store represents a blob storage interface
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	// PresignGet returns a temporary download URL, or ErrPresignUnsupported
	// when the store can only stream objects itself.
	PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
