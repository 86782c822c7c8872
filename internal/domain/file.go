package domain

import (
	"time"
)

// StoredFile represents a file held by the storage repository
type StoredFile struct {
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ValidityEntry is the validity status of one file as recorded in the cache.
// Status is nil when the key existed but held no value at fetch time.
type ValidityEntry struct {
	FileName string  `json:"file_name"`
	Status   *string `json:"status"`
}

// HasStatus reports whether a status value was present
func (e ValidityEntry) HasStatus() bool {
	return e.Status != nil
}

// StatusOr returns the status, or def when absent
func (e ValidityEntry) StatusOr(def string) string {
	if e.Status == nil {
		return def
	}
	return *e.Status
}
