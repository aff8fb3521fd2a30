// Package storagedriver defines the blob store contract:
// put/get/exists/delete/list over opaque byte-string keys, plus the
// driver-facing error types the core distinguishes by kind.
package storagedriver

import (
	"context"
	"errors"
	"fmt"
)

// StorageDriver is the blob store driver ABI. The registry core only
// ever sees these five operations; concrete drivers may carry
// additional configuration (endpoints, credentials) behind their own
// constructors.
type StorageDriver interface {
	// Put writes contents under key. It is idempotent: writing the
	// same key twice, even with different bytes, must not fail
	// solely because the key already exists.
	Put(ctx context.Context, key string, contents []byte) error

	// Get returns the bytes stored under key, or a *NotFoundError if
	// no such key exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting an absent key is a no-op success.
	Delete(ctx context.Context, key string) error

	// List returns every key whose string begins with prefix.
	// Ordering is unspecified but the result is complete even if the
	// driver paginates internally.
	List(ctx context.Context, prefix string) ([]string, error)
}

// NotFoundError reports that a key was not present in the driver.
// It is distinguished from other storage errors so callers can
// branch on "missing" vs "broken".
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("storagedriver: key not found: %s", e.Key)
}

// IsNotFound reports whether err is (or wraps) a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidKeyError reports a key that does not meet the driver's
// grammar (e.g. one containing "..").
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("storagedriver: invalid key %q: %s", e.Key, e.Reason)
}
