// Package files implements the file service: uploads, deletes and listings
// against the file store, and the validity index built by scanning the cache.
package files

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
)

// DefaultScanCount is the SCAN batch size hint
const DefaultScanCount int64 = 100

// Config contains file service configuration
type Config struct {
	// ScanCount is the batch size hint passed to each scan round
	ScanCount int64
}

// DefaultConfig returns default file service configuration
func DefaultConfig() *Config {
	return &Config{
		ScanCount: DefaultScanCount,
	}
}

// Service orchestrates the file store and the validity cache.
// It holds no mutable state; every call is independent.
type Service struct {
	config *Config
	store  port.FileStore
	cache  port.ValidityCache
	logger *zap.Logger
}

// NewService creates a new file service
func NewService(store port.FileStore, cache port.ValidityCache, cfg *Config, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ScanCount <= 0 {
		cfg.ScanCount = DefaultScanCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config: cfg,
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Upload reads the payload fully and saves it under name.
// Returns the name under which the store kept the file.
func (s *Service) Upload(ctx context.Context, name string, payload io.Reader) (string, error) {
	content, err := io.ReadAll(payload)
	if err != nil {
		return "", fmt.Errorf("failed to read upload payload: %w", err)
	}

	stored, err := s.store.Save(ctx, name, content)
	if err != nil {
		return "", err
	}

	s.logger.Debug("file uploaded", zap.String("file_name", stored), zap.Int("size", len(content)))
	return stored, nil
}

// Delete removes the named file from the store
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Debug("file deleted", zap.String("file_name", name))
	return nil
}

// ListFiles returns the files currently in the store, in store order
func (s *Service) ListFiles(ctx context.Context) ([]domain.StoredFile, error) {
	return s.store.List(ctx)
}

// Open returns a reader over a stored file
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error) {
	return s.store.Open(ctx, name)
}

// ListValidFiles scans every validity key and returns one entry per key.
//
// The scan runs round by round until the cache hands back the start cursor.
// Entries are neither sorted nor deduplicated, and the result is not an atomic
// snapshot: keys written or removed during the scan may or may not appear.
// Any failure discards the partial result.
func (s *Service) ListValidFiles(ctx context.Context) ([]domain.ValidityEntry, error) {
	match := domain.ValidityMatchPattern()
	entries := make([]domain.ValidityEntry, 0)
	cursor := port.ScanStart
	rounds := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, keys, err := s.cache.Scan(ctx, cursor, match, s.config.ScanCount)
		if err != nil {
			return nil, err
		}
		rounds++

		if len(keys) > 0 {
			batch, err := s.resolveBatch(ctx, keys)
			if err != nil {
				return nil, err
			}
			entries = append(entries, batch...)
		}

		cursor = next
		if cursor == port.ScanStart {
			break
		}
	}

	s.logger.Debug("validity scan complete",
		zap.Int("rounds", rounds),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// resolveBatch fetches the values of one scan batch and pairs them with their keys
func (s *Service) resolveBatch(ctx context.Context, keys []string) ([]domain.ValidityEntry, error) {
	for _, key := range keys {
		if !utf8.ValidString(key) {
			return nil, domain.NewDecodingError(domain.DecodeKey, []byte(key))
		}
	}

	values, err := s.cache.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(values) != len(keys) {
		return nil, domain.NewCacheError("mget",
			fmt.Errorf("got %d values for %d keys", len(values), len(keys)))
	}

	batch := make([]domain.ValidityEntry, 0, len(keys))
	for i, key := range keys {
		status, err := decodeStatus(values[i])
		if err != nil {
			return nil, err
		}
		batch = append(batch, domain.ValidityEntry{
			FileName: domain.FileNameFromValidityKey(key),
			Status:   status,
		})
	}
	return batch, nil
}

// decodeStatus turns a raw cache value into a status. Missing and empty
// values both mean no status.
func decodeStatus(raw []byte) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !utf8.Valid(raw) {
		return nil, domain.NewDecodingError(domain.DecodeValue, raw)
	}
	status := string(raw)
	return &status, nil
}

// SetValidity records the validity status of a file
func (s *Service) SetValidity(ctx context.Context, name, status string) error {
	return s.cache.Set(ctx, domain.ValidityKey(name), status)
}

// ClearValidity removes the validity status of a file.
// Returns false if no status was recorded.
func (s *Service) ClearValidity(ctx context.Context, name string) (bool, error) {
	n, err := s.cache.Del(ctx, domain.ValidityKey(name))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks validity cache connectivity
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
