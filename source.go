package cogeotiff

import (
	"context"
	"encoding/binary"
	"log/slog"
	"strconv"
	"sync"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
)

const defaultChunkSize = 64 * 1024

// ByteSource is the chunked lazy byte source of §4.A: offset-addressed
// typed reads over a backing store, fetched a chunk at a time and cached
// for the lifetime of the source.
type ByteSource interface {
	Uint16(ctx context.Context, offset int64) (uint16, error)
	Uint32(ctx context.Context, offset int64) (uint32, error)
	Bytes(ctx context.Context, offset, length int64) ([]byte, error)
	HasBytes(offset, length int64) bool
	ReadType(ctx context.Context, offset int64, t TagType, count uint32) (interface{}, error)

	Name() string
	Version() uint16
	ChunkSize() int64
	Chunks() map[int64]ChunkState
	ByteOrder() binary.ByteOrder

	// setHeader is unexported to seal ByteSource to implementations in
	// this package: only NewHTTPSource/NewFileSource build valid ones.
	setHeader(order binary.ByteOrder, version uint16)
}

// chunkedSource is the concrete ByteSource: a chunk table guarded by a
// RWMutex, fetches coalesced per chunk id by a singleflight.Group, and a
// pluggable BackingStore doing the actual I/O. Grounded on the teacher's
// bufferReader/bytesReader pair, generalized into one chunk-table type that
// works identically over HTTP or a local file.
type chunkedSource struct {
	backing   BackingStore
	chunkSize int64
	byteOrder binary.ByteOrder
	version   uint16
	length    int64 // total source length, -1 if unknown

	mu     sync.RWMutex
	chunks map[int64]*chunk

	group singleflight.Group

	bufPool *bytebufferpool.Pool
	logger  *slog.Logger
}

// newChunkedSource builds a chunkedSource over backing. chunkSize must be
// at least 8 bytes (the TIFF header) per §4.A's invariant; callers passing
// a smaller value get the default.
func newChunkedSource(ctx context.Context, backing BackingStore, chunkSize int64) (*chunkedSource, error) {
	if chunkSize < 8 {
		chunkSize = defaultChunkSize
	}
	length, err := backing.Size(ctx)
	if err != nil {
		length = -1
	}
	return &chunkedSource{
		backing:   backing,
		chunkSize: chunkSize,
		byteOrder: binary.LittleEndian,
		length:    length,
		chunks:    make(map[int64]*chunk),
		bufPool:   new(bytebufferpool.Pool),
		logger:    slog.Default(),
	}, nil
}

// setHeader records the byte order and version discovered while parsing
// the TIFF header (§4.C); called by parseHeader in ifd.go during Open.
func (s *chunkedSource) setHeader(order binary.ByteOrder, version uint16) {
	s.byteOrder = order
	s.version = version
}

func (s *chunkedSource) Name() string                { return s.backing.Name() }
func (s *chunkedSource) Version() uint16             { return s.version }
func (s *chunkedSource) ChunkSize() int64            { return s.chunkSize }
func (s *chunkedSource) ByteOrder() binary.ByteOrder { return s.byteOrder }

// Chunks returns a point-in-time snapshot of chunk states for
// introspection (§6). Bytes are never exposed here.
func (s *chunkedSource) Chunks() map[int64]ChunkState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]ChunkState, len(s.chunks))
	for id, c := range s.chunks {
		state, _ := c.snapshot()
		out[id] = state
	}
	return out
}

// chunkFor returns the chunk for id, creating an empty placeholder under
// the write lock on first reference.
func (s *chunkedSource) chunkFor(id int64) *chunk {
	s.mu.RLock()
	c, ok := s.chunks[id]
	s.mu.RUnlock()
	if ok {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.chunks[id]; ok {
		return c
	}
	c = newChunk(id)
	s.chunks[id] = c
	return c
}

// ensureChunk returns the chunk for id once it is ready, fetching it if
// necessary. Concurrent callers for the same id coalesce onto a single
// backing-store call via singleflight, keyed by the chunk id; the backing
// read itself runs with no chunk-table lock held. A caller whose context is
// canceled returns early without disturbing the in-flight fetch for
// everyone else.
func (s *chunkedSource) ensureChunk(ctx context.Context, id int64) (*chunk, error) {
	c := s.chunkFor(id)
	if state, _ := c.snapshot(); state == chunkReady {
		return c, nil
	}

	key := strconv.FormatInt(id, 10)
	resultCh := s.group.DoChan(key, func() (interface{}, error) {
		if state, _ := c.snapshot(); state == chunkReady {
			return c, nil
		}
		c.markFetching()

		offset := id * s.chunkSize
		length := s.chunkSize
		if s.length >= 0 && offset+length > s.length {
			length = s.length - offset
		}
		if length <= 0 {
			c.resetEmpty()
			return nil, &OffsetOutOfRangeError{Offset: offset}
		}

		// Detached from the originating caller's ctx: this fetch is
		// shared by every waiter coalesced onto this chunk id via
		// singleflight, so one waiter canceling must not fail the read
		// for the others (§5 "only the cancelled waiter observes
		// cancellation").
		b, err := s.backing.ReadRange(context.WithoutCancel(ctx), offset, length)
		if err != nil {
			c.resetEmpty()
			return nil, err
		}
		c.fill(b)
		return c, nil
	})

	select {
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Bytes returns the length bytes at offset, fetching and stitching
// together as many chunks as needed (§4.A "stitching across chunk
// boundaries").
func (s *chunkedSource) Bytes(ctx context.Context, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}
	if s.length >= 0 && offset+length > s.length {
		return nil, &OffsetOutOfRangeError{Offset: offset}
	}

	startID := offset / s.chunkSize
	endID := (offset + length - 1) / s.chunkSize

	buf := s.bufPool.Get()
	defer s.bufPool.Put(buf)
	buf.Reset()

	for id := startID; id <= endID; id++ {
		c, err := s.ensureChunk(ctx, id)
		if err != nil {
			return nil, err
		}
		_, b := c.snapshot()

		chunkStart := id * s.chunkSize
		chunkEnd := chunkStart + int64(len(b))

		readStart := offset
		if chunkStart > readStart {
			readStart = chunkStart
		}
		readEnd := offset + length
		if chunkEnd < readEnd {
			readEnd = chunkEnd
		}
		if readEnd <= readStart {
			continue
		}
		buf.Write(b[readStart-chunkStart : readEnd-chunkStart])
	}

	if int64(buf.Len()) != length {
		return nil, &ShortReadError{Offset: offset, Wanted: int(length), Got: buf.Len()}
	}
	out := append([]byte(nil), buf.B...)
	return out, nil
}

// HasBytes reports whether [offset, offset+length) is already resident,
// without triggering a fetch (§4.A, used by the IFD parser to decide
// between an eager and a lazy TagEntry).
func (s *chunkedSource) HasBytes(offset, length int64) bool {
	if length <= 0 {
		return true
	}
	startID := offset / s.chunkSize
	endID := (offset + length - 1) / s.chunkSize

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := startID; id <= endID; id++ {
		c, ok := s.chunks[id]
		if !ok {
			return false
		}
		if state, _ := c.snapshot(); state != chunkReady {
			return false
		}
	}
	return true
}

func (s *chunkedSource) Uint16(ctx context.Context, offset int64) (uint16, error) {
	b, err := s.Bytes(ctx, offset, 2)
	if err != nil {
		return 0, err
	}
	return s.byteOrder.Uint16(b), nil
}

func (s *chunkedSource) Uint32(ctx context.Context, offset int64) (uint32, error) {
	b, err := s.Bytes(ctx, offset, 4)
	if err != nil {
		return 0, err
	}
	return s.byteOrder.Uint32(b), nil
}

// ReadType decodes count values of type t starting at offset, fetching
// whatever chunks are needed (§4.B).
func (s *chunkedSource) ReadType(ctx context.Context, offset int64, t TagType, count uint32) (interface{}, error) {
	sz, ok := t.size()
	if !ok {
		return nil, &MissingTagError{Tag: "unknown tag type"}
	}
	b, err := s.Bytes(ctx, offset, int64(sz)*int64(count))
	if err != nil {
		return nil, err
	}
	return decodeValue(b, t, count, s.byteOrder)
}
