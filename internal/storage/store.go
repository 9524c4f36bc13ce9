// Package storage provides blob storage for payment proof files behind a
// narrow put/open/delete-by-key interface. Ledger code never touches
// filesystem paths or bucket layouts directly.
package storage

import (
	"context"
	"io"
)

// ProofStore stores proof blobs by key.
type ProofStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
