package port

import (
	"context"
	"io"
	"time"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// DiskUsage represents disk usage statistics
type DiskUsage struct {
	Total   uint64  // Total disk space in bytes
	Used    uint64  // Used disk space in bytes
	Free    uint64  // Free disk space in bytes
	UsedPct float64 // Used percentage (0-100)
}

// FileStore defines the storage repository: a durable name to bytes mapping
type FileStore interface {
	// Save stores content under name, replacing any existing file.
	// Returns the name under which the file was stored.
	Save(ctx context.Context, name string, content []byte) (string, error)

	// Delete removes the named file. Fails with domain.ErrFileNotFound if absent.
	Delete(ctx context.Context, name string) error

	// List enumerates all currently stored files in no particular order
	List(ctx context.Context) ([]domain.StoredFile, error)

	// Open returns a reader over the named file's content
	Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error)
}

// StorageMaintainer is implemented by stores that leave temporary files behind
type StorageMaintainer interface {
	// CleanOldTempFiles removes temp files older than the specified duration
	// Returns the number of files deleted
	CleanOldTempFiles(olderThan time.Duration) (int, error)

	// GetDiskUsage returns disk usage statistics
	GetDiskUsage() (*DiskUsage, error)

	// Ping checks that the store's directories are still reachable
	Ping() error
}
