// Package storage abstracts the object store that export bundles land in.
// The export engine only sees the ObjectStore interface; backends include an
// in-memory store for tests and a filesystem store for single-node deploys.
//
//go:generate mockgen -source=storage.go -destination=mocks/mocks.go -package=mocks ObjectStore
package storage

import (
	"context"
	"time"

	dErrors "annexops/pkg/domain-errors"
)

var ErrObjectNotFound = dErrors.New(dErrors.CodeNotFound, "stored object not found")

// ObjectStore stores immutable export artifacts.
type ObjectStore interface {
	// Put writes data under key and returns the storage URI. Keys are
	// namespaced by the caller; writing an existing key is an error because
	// export bundles are immutable.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// PresignedGet returns a time-limited download URL for a stored URI.
	PresignedGet(ctx context.Context, uri string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, uri string) error
}
