package cogeotiff

import (
	"context"
	"sync"
)

// TagEntry is one IFD tag: either already decoded (its value's backing
// chunk was resident at parse time) or lazy (decoding is deferred until
// Fetch is called), per §4.C "Lazy tag resolution". Fetch is idempotent
// and safe for concurrent callers.
type TagEntry struct {
	Code  uint16
	Type  TagType
	Count uint32

	mu       sync.Mutex
	resolved bool
	value    interface{}

	offset int64
	source ByteSource
}

// Name returns the tag's friendly name, or "" if this code isn't in the
// registry.
func (e *TagEntry) Name() string {
	return tagNames[e.Code]
}

// Lazy reports whether this entry's value has not yet been fetched.
func (e *TagEntry) Lazy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.resolved
}

// Value returns the decoded value and true if already resolved, or
// (nil, false) if it is still lazy. Callers that can tolerate a fetch
// should call Fetch instead.
func (e *TagEntry) Value() (interface{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.resolved
}

// Fetch returns the tag's decoded value, resolving it from the source on
// first call and caching the result for subsequent calls.
func (e *TagEntry) Fetch(ctx context.Context) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolved {
		return e.value, nil
	}
	v, err := e.source.ReadType(ctx, e.offset, e.Type, e.Count)
	if err != nil {
		return nil, err
	}
	e.value = v
	e.resolved = true
	return v, nil
}

// resolvedEntry builds a TagEntry whose value is already known (inline
// value-or-offset field, or a value read from a resident chunk at parse
// time).
func resolvedEntry(code uint16, t TagType, count uint32, value interface{}) *TagEntry {
	return &TagEntry{Code: code, Type: t, Count: count, resolved: true, value: value}
}

// lazyEntry builds a TagEntry whose value lives at offset in source and
// has not been fetched yet.
func lazyEntry(code uint16, t TagType, count uint32, offset int64, source ByteSource) *TagEntry {
	return &TagEntry{Code: code, Type: t, Count: count, offset: offset, source: source}
}
