package files

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// fakeStore implements port.FileStore in memory
type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	listErr error
	saved   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (f *fakeStore) Save(ctx context.Context, name string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.files[name] = append([]byte(nil), content...)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[name]; !ok {
		return domain.NewStorageError("delete", name, domain.ErrFileNotFound)
	}
	delete(f.files, name)
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]domain.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	files := make([]domain.StoredFile, 0, len(f.files))
	for name, content := range f.files {
		files = append(files, domain.StoredFile{FileName: name, Size: int64(len(content)), ModifiedAt: time.Now()})
	}
	return files, nil
}

func (f *fakeStore) Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[name]
	if !ok {
		return nil, nil, domain.NewStorageError("open", name, domain.ErrFileNotFound)
	}
	return io.NopCloser(bytes.NewReader(content)), &domain.StoredFile{FileName: name, Size: int64(len(content))}, nil
}

type scanCall struct {
	cursor uint64
	match  string
	count  int64
}

// fakeCache implements port.ValidityCache in memory.
// By default Scan pages through the sorted matching keys, count at a time,
// using the offset of the next page as cursor. When rounds is set, Scan
// replays it instead: round i is returned for cursor i.
type fakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
	rounds [][]string

	scanErr     error
	scanErrAt   int // fail on this scan call (1-based), 0 = first call when scanErr set
	mgetErr     error
	mgetShort   bool
	vanishOnGet map[string]bool // keys deleted between scan and mget

	scanCalls []scanCall
	mgetCalls [][]string
	onScan    func(call int)
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte), vanishOnGet: make(map[string]bool)}
}

func (c *fakeCache) Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error) {
	c.mu.Lock()
	c.scanCalls = append(c.scanCalls, scanCall{cursor: cursor, match: match, count: count})
	call := len(c.scanCalls)
	onScan := c.onScan
	c.mu.Unlock()

	if onScan != nil {
		onScan(call)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scanErr != nil && (c.scanErrAt == 0 || c.scanErrAt == call) {
		return 0, nil, c.scanErr
	}

	if c.rounds != nil {
		keys := c.rounds[cursor]
		next := cursor + 1
		if int(next) >= len(c.rounds) {
			next = 0
		}
		return next, keys, nil
	}

	var matched []string
	for k := range c.values {
		if ok, _ := path.Match(match, k); ok {
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)

	start := int(cursor)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(count)
	if end >= len(matched) {
		return 0, matched[start:], nil
	}
	return uint64(end), matched[start:end], nil
}

func (c *fakeCache) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mgetCalls = append(c.mgetCalls, append([]string(nil), keys...))
	if c.mgetErr != nil {
		return nil, c.mgetErr
	}
	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if c.vanishOnGet[k] {
			values = append(values, nil)
			continue
		}
		values = append(values, c.values[k])
	}
	if c.mgetShort && len(values) > 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = []byte(value)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) Ping(ctx context.Context) error {
	return nil
}
