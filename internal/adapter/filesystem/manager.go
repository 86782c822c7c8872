package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
)

// tempDirName holds in-flight uploads. List only reports regular files, so
// the directory never shows up as a stored file.
const tempDirName = ".uploads"

const tempFileExt = ".uploading"

// Manager is a directory-backed file store
type Manager struct {
	rootDir    string
	tempDir    string
	bufferSize int
}

// Ensure Manager implements the storage ports
var (
	_ port.FileStore         = (*Manager)(nil)
	_ port.StorageMaintainer = (*Manager)(nil)
)

// NewManager creates a new filesystem manager
func NewManager(rootDir string) (*Manager, error) {
	return NewManagerWithBufferSize(rootDir, 1024*1024) // 1MB default
}

// NewManagerWithBufferSize creates a new filesystem manager with custom buffer size
func NewManagerWithBufferSize(rootDir string, bufferSize int) (*Manager, error) {
	tempDir := filepath.Join(rootDir, tempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dirs: %w", err)
	}

	if bufferSize <= 0 {
		bufferSize = 1024 * 1024
	}

	return &Manager{
		rootDir:    rootDir,
		tempDir:    tempDir,
		bufferSize: bufferSize,
	}, nil
}

// RootDir returns the storage root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// Ping verifies the root and temp directories still exist
func (m *Manager) Ping() error {
	for _, dir := range []string{m.rootDir, m.tempDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("storage dir unavailable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("storage dir unavailable: %s is not a directory", dir)
		}
	}
	return nil
}

// filePath resolves a stored file name to its path under the root.
// Names are flat: anything that would land outside the root directory or in a
// subdirectory is rejected.
func (m *Manager) filePath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name == tempDirName {
		return "", domain.ErrInvalidFileName
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", domain.ErrInvalidFileName
	}
	return filepath.Join(m.rootDir, name), nil
}

// Save writes content under name through a temp file and an atomic rename
func (m *Manager) Save(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := m.filePath(name)
	if err != nil {
		return "", domain.NewStorageError("save", name, err)
	}

	if _, err := m.writeFile(path, bytes.NewReader(content)); err != nil {
		return "", domain.NewStorageError("save", name, err)
	}

	return name, nil
}

// writeFile streams reader into path. Returns bytes written.
func (m *Manager) writeFile(path string, reader io.Reader) (int64, error) {
	tempPath := filepath.Join(m.tempDir, uuid.NewString()+tempFileExt)

	f, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := make([]byte, m.bufferSize)
	written, err := io.CopyBuffer(f, reader, buf)
	if err != nil {
		f.Close()
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return written, nil
}

// Delete removes a stored file
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.filePath(name)
	if err != nil {
		return domain.NewStorageError("delete", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.NewStorageError("delete", name, notFound(err))
	}
	if !info.Mode().IsRegular() {
		return domain.NewStorageError("delete", name, domain.ErrFileNotFound)
	}

	if err := os.Remove(path); err != nil {
		return domain.NewStorageError("delete", name, notFound(err))
	}
	return nil
}

// List enumerates regular files directly under the root directory
func (m *Manager) List(ctx context.Context) ([]domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return nil, domain.NewStorageError("list", "", err)
	}

	files := make([]domain.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, domain.NewStorageError("list", entry.Name(), err)
		}
		files = append(files, domain.StoredFile{
			FileName:   entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	return files, nil
}

// Open returns a reader over a stored file. The caller must close it.
func (m *Manager) Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	path, err := m.filePath(name)
	if err != nil {
		return nil, nil, domain.NewStorageError("open", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, domain.NewStorageError("open", name, notFound(err))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, domain.NewStorageError("open", name, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, domain.NewStorageError("open", name, domain.ErrFileNotFound)
	}

	return f, &domain.StoredFile{
		FileName:   name,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

// CleanOldTempFiles removes abandoned upload temp files older than the specified duration
func (m *Manager) CleanOldTempFiles(olderThan time.Duration) (int, error) {
	count := 0
	threshold := time.Now().Add(-olderThan)

	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read temp dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != tempFileExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if removeErr := os.Remove(filepath.Join(m.tempDir, entry.Name())); removeErr == nil {
				count++
			}
		}
	}
	return count, nil
}

// notFound maps a missing file onto domain.ErrFileNotFound, keeping other errors intact
func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrFileNotFound, err)
	}
	return err
}
