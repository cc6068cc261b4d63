// Package storage keeps uploaded media bytes out of the entity store.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore saves and retrieves opaque file bytes by id.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}
