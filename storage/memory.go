package storage

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tangerg/graphrag/pipelineerr"
)

var _ Storage = (*MemoryStorage)(nil)

type memoryEntry struct {
	data      []byte
	createdAt time.Time
}

// MemoryStorage is an in-process Storage used by tests and by any caller
// that wants a scratch table space without touching disk (§4.1, "used for
// tests").
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	prefix  string
	parent  *MemoryStorage
}

// NewMemoryStorage returns an empty, ready-to-use MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStorage) root() *MemoryStorage {
	if m.parent != nil {
		return m.parent.root()
	}
	return m
}

func (m *MemoryStorage) fullKey(key string) string {
	if m.prefix == "" {
		return key
	}
	return m.prefix + "/" + key
}

func (m *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	r := m.root()
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[m.fullKey(key)]
	if !ok {
		return nil, pipelineerr.NotFound("key not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, rd io.Reader) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[m.fullKey(key)] = memoryEntry{data: data, createdAt: time.Now().UTC()}
	return nil
}

func (m *MemoryStorage) Has(_ context.Context, key string) (bool, error) {
	r := m.root()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[m.fullKey(key)]
	return ok, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, m.fullKey(key))
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := m.prefix
	for k := range r.entries {
		if prefix == "" || strings.HasPrefix(k, prefix+"/") {
			delete(r.entries, k)
		}
	}
	return nil
}

func (m *MemoryStorage) CreateChild(name string) Storage {
	prefix := name
	if m.prefix != "" {
		prefix = m.prefix + "/" + name
	}
	return &MemoryStorage{prefix: prefix, parent: m.root()}
}

func (m *MemoryStorage) GetCreationDate(_ context.Context, key string) (time.Time, bool, error) {
	r := m.root()
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[m.fullKey(key)]
	if !ok {
		return time.Time{}, false, nil
	}
	return e.createdAt, true, nil
}

func (m *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	r := m.root()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []string
	prefix := m.prefix
	for k := range r.entries {
		if prefix != "" {
			if !strings.HasPrefix(k, prefix+"/") {
				continue
			}
			keys = append(keys, strings.TrimPrefix(k, prefix+"/"))
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStorage) Find(ctx context.Context, pattern string, opts FindOptions) func(func(FindResult, error) bool) {
	return func(yield func(FindResult, error) bool) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			yield(FindResult{}, err)
			return
		}
		keys, err := m.Keys(ctx)
		if err != nil {
			yield(FindResult{}, err)
			return
		}
		matched := 0
		for _, k := range keys {
			if ctx.Err() != nil {
				yield(FindResult{}, pipelineerr.Cancelled(ctx.Err().Error()))
				return
			}
			if opts.BaseDir != "" && !strings.HasPrefix(k, opts.BaseDir) {
				continue
			}
			if !re.MatchString(k) {
				continue
			}
			meta := namedGroupMetadata(re, k)
			ok, err := matchesFilter(opts.Filter, meta)
			if err != nil {
				yield(FindResult{}, err)
				return
			}
			if !ok {
				continue
			}
			createdAt, _, _ := m.GetCreationDate(ctx, k)
			if !yield(FindResult{Path: k, Metadata: meta, CreatedAt: createdAt}, nil) {
				return
			}
			matched++
			if opts.Max > 0 && matched >= opts.Max {
				return
			}
		}
	}
}
