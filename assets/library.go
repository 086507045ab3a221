package assets

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gogpu/dfield"
	"github.com/gogpu/dfield/internal/cache"
)

// LoadFunc reads the field stored at path.
type LoadFunc func(path string) (*dfield.Field, error)

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithLoader replaces dfield.Load as the way a Library reads assets.
func WithLoader(load LoadFunc) LibraryOption {
	return func(l *Library) {
		if load != nil {
			l.load = load
		}
	}
}

// Library loads distance fields on demand and keeps the most recently
// used ones in memory. Paths are cleaned before use, so "a/./b.dfield"
// and "a/b.dfield" name the same asset.
//
// A Library is safe for concurrent use. Fields it returns are shared and
// must be treated as read-only.
type Library struct {
	cache *cache.Cache[string, *dfield.Field]
	load  LoadFunc

	mu       sync.Mutex
	inflight map[string]*loadCall

	loads atomic.Uint64
}

type loadCall struct {
	done  chan struct{}
	field *dfield.Field
	err   error
}

// NewLibrary creates a Library holding at most capacity fields. A
// capacity of 0 or less keeps every field loaded.
func NewLibrary(capacity int, opts ...LibraryOption) *Library {
	l := &Library{
		load:     dfield.Load,
		inflight: make(map[string]*loadCall),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.cache = cache.New(capacity, func(path string, f *dfield.Field) {
		Logger().Debug("assets: evicted", "path", path, "width", f.Width(), "height", f.Height())
	})
	return l
}

// Get returns the field stored at path, loading it on first use.
// Concurrent calls for a path that is not yet loaded share one load.
// A failed load is returned to every waiting caller and not cached, so a
// later Get tries again.
func (l *Library) Get(path string) (*dfield.Field, error) {
	key := filepath.Clean(path)
	if f, ok := l.cache.Get(key); ok {
		return f, nil
	}

	l.mu.Lock()
	// Loaded by another caller since the miss above.
	if f, ok := l.cache.Peek(key); ok {
		l.mu.Unlock()
		return f, nil
	}
	if call, ok := l.inflight[key]; ok {
		l.mu.Unlock()
		<-call.done
		return call.field, call.err
	}
	call := &loadCall{done: make(chan struct{}), err: errLoadPanicked}
	l.inflight[key] = call
	l.mu.Unlock()

	// The cache is filled before the call is retired, so a caller that
	// finds neither still sees the field. A panicking loader still
	// retires the call; waiters get errLoadPanicked.
	defer func() {
		l.mu.Lock()
		delete(l.inflight, key)
		l.mu.Unlock()
		close(call.done)
	}()

	l.loads.Add(1)
	call.field, call.err = l.load(key)
	if call.err == nil {
		l.cache.Set(key, call.field)
		Logger().Debug("assets: loaded", "path", key, "width", call.field.Width(), "height", call.field.Height())
	} else {
		Logger().Debug("assets: load failed", "path", key, "err", call.err)
	}
	return call.field, call.err
}

var errLoadPanicked = errors.New("assets: loader panicked")

// Remove drops path from memory. It reports whether it was loaded.
func (l *Library) Remove(path string) bool {
	return l.cache.Delete(filepath.Clean(path))
}

// Purge drops every loaded field. Statistics are kept.
func (l *Library) Purge() {
	l.cache.Clear()
}

// Len returns the number of fields held in memory.
func (l *Library) Len() int {
	return l.cache.Len()
}

// Stats contains Library statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Loads     uint64
	Evictions uint64
}

// Stats returns a snapshot of the library counters. Misses counts
// lookups that found nothing in memory; Loads counts calls to the loader,
// which is fewer when concurrent misses share a load.
func (l *Library) Stats() Stats {
	cs := l.cache.Stats()
	return Stats{
		Len:       cs.Len,
		Capacity:  cs.Capacity,
		Hits:      cs.Hits,
		Misses:    cs.Misses,
		Loads:     l.loads.Load(),
		Evictions: cs.Evictions,
	}
}
