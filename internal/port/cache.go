package port

import "context"

// ScanStart is the cursor that starts a scan. A scan is complete when the
// cache hands this cursor back.
const ScanStart uint64 = 0

// ValidityCache defines the key-value cache holding per-file validity status
type ValidityCache interface {
	// Scan runs one round of a resumable key scan.
	// count is a batch size hint, not a guarantee.
	Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error)

	// MGet fetches values for keys in the same order.
	// A nil element means the key holds no value.
	MGet(ctx context.Context, keys []string) ([][]byte, error)

	// Set stores value under key without expiry
	Set(ctx context.Context, key, value string) error

	// Del removes keys and returns how many existed
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping checks cache connectivity
	Ping(ctx context.Context) error
}
