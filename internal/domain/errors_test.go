package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestStorageError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StorageError
		want string
	}{
		{
			name: "with name and error",
			err:  NewStorageError("save", "a.txt", errors.New("disk full")),
			want: `storage save "a.txt": disk full`,
		},
		{
			name: "without name",
			err:  NewStorageError("list", "", errors.New("permission denied")),
			want: "storage list: permission denied",
		},
		{
			name: "op only",
			err:  NewStorageError("delete", "", nil),
			want: "storage delete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	err := NewStorageError("delete", "missing.txt", ErrFileNotFound)

	if !errors.Is(err, ErrFileNotFound) {
		t.Error("errors.Is(err, ErrFileNotFound) = false, want true")
	}

	wrapped := fmt.Errorf("outer: %w", NewStorageError("open", "x", fs.ErrPermission))
	if !errors.Is(wrapped, fs.ErrPermission) {
		t.Error("wrapped storage error should unwrap to fs.ErrPermission")
	}
}

func TestIsStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"storage error", NewStorageError("save", "a", nil), true},
		{"wrapped storage error", fmt.Errorf("upload: %w", NewStorageError("save", "a", nil)), true},
		{"cache error", NewCacheError("scan", nil), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorageError(tt.err); got != tt.want {
				t.Errorf("IsStorageError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewCacheError("scan", underlying)

	if got, want := err.Error(), "cache scan: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
	if got, want := NewCacheError("mget", nil).Error(), "cache mget failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsCacheError(fmt.Errorf("list: %w", err)) {
		t.Error("IsCacheError() on wrapped error = false, want true")
	}
	if IsCacheError(NewDecodingError(DecodeKey, nil)) {
		t.Error("IsCacheError() on decoding error = true, want false")
	}
}

func TestDecodingError(t *testing.T) {
	err := NewDecodingError(DecodeValue, []byte{0xff, 0xfe})

	if err.Kind != DecodeValue {
		t.Errorf("Kind = %q, want %q", err.Kind, DecodeValue)
	}
	if got, want := err.Error(), `cannot decode cache value "\xff\xfe" as UTF-8`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsDecodingError(fmt.Errorf("scan: %w", err)) {
		t.Error("IsDecodingError() on wrapped error = false, want true")
	}
	if IsDecodingError(errors.New("other")) {
		t.Error("IsDecodingError() on plain error = true, want false")
	}
}
