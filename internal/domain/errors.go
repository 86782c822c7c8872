package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFileName = errors.New("invalid file name")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
)

// StorageError is returned by the storage repository when a file operation fails.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

// Error returns the error message
func (e *StorageError) Error() string {
	msg := "storage " + e.Op
	if e.Name != "" {
		msg += " " + fmt.Sprintf("%q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new storage error
func NewStorageError(op, name string, err error) *StorageError {
	return &StorageError{Op: op, Name: name, Err: err}
}

// IsStorageError returns true if err came from the storage repository
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// CacheError is returned when the validity cache fails or misbehaves.
type CacheError struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *CacheError) Error() string {
	if e.Err != nil {
		return "cache " + e.Op + ": " + e.Err.Error()
	}
	return "cache " + e.Op + " failed"
}

// Unwrap returns the underlying error
func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new cache error
func NewCacheError(op string, err error) *CacheError {
	return &CacheError{Op: op, Err: err}
}

// IsCacheError returns true if err came from the validity cache
func IsCacheError(err error) bool {
	var ce *CacheError
	return errors.As(err, &ce)
}

// Decoding targets
const (
	DecodeKey   = "key"
	DecodeValue = "value"
)

// DecodingError reports a cache key or value that is not valid UTF-8 text.
type DecodingError struct {
	Kind string
	Raw  []byte
}

// Error returns the error message
func (e *DecodingError) Error() string {
	return fmt.Sprintf("cannot decode cache %s %q as UTF-8", e.Kind, e.Raw)
}

// NewDecodingError creates a new decoding error
func NewDecodingError(kind string, raw []byte) *DecodingError {
	return &DecodingError{Kind: kind, Raw: raw}
}

// IsDecodingError returns true if err is a decoding failure
func IsDecodingError(err error) bool {
	var de *DecodingError
	return errors.As(err, &de)
}
