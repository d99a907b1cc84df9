// Package storage provides object storage abstractions for fetching
// configuration artifacts.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDownloadFailed = errors.New("download failed")
)

// ObjectStorage abstracts read access to the store holding credential
// artifacts. Implementations include S3 and local filesystem for testing.
// The job never writes to the store.
type ObjectStorage interface {
	// Download downloads an object to the local filesystem.
	// objectPath is the source path in object storage.
	// localPath is the destination path on the local filesystem.
	// Existing local files are overwritten.
	Download(ctx context.Context, objectPath, localPath string) error

	// Exists checks if an object exists in storage.
	// Returns true if the object exists, false otherwise.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
