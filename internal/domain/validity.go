package domain

import "strings"

// ValidityKeyPrefix namespaces validity status keys in the cache.
// The status of file F lives under ValidityKeyPrefix + F.
const ValidityKeyPrefix = "valid:"

// ValidityKey returns the cache key holding the validity status of fileName
func ValidityKey(fileName string) string {
	return ValidityKeyPrefix + fileName
}

// ValidityMatchPattern returns the glob pattern matching every validity key
func ValidityMatchPattern() string {
	return ValidityKeyPrefix + "*"
}

// FileNameFromValidityKey strips the first occurrence of the prefix from key.
// Keys returned by a prefix-matched scan always start with the prefix, so this
// behaves like TrimPrefix for well-formed keys.
func FileNameFromValidityKey(key string) string {
	return strings.Replace(key, ValidityKeyPrefix, "", 1)
}
