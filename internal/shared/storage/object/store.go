package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving document blobs.
// Keys are opaque storage locators chosen by the caller.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader) (sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
