package cogeotiff

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// BackingStore is the narrow capability a Byte Source fetches chunks
// through (Design Notes, "Browser/file duality"): a range read, a total
// length, and a name for introspection. HTTP and local-file variants are
// provided; any other transport just needs to implement this.
type BackingStore interface {
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)
	Size(ctx context.Context) (int64, error)
	Name() string
}

// httpBackingStore serves range reads over HTTP, grounded in the teacher's
// HTTPRangeReader (range GET with a Range header, HEAD for size discovery),
// narrowed to the single ReadRange/Size/Name capability the chunked source
// actually needs — no read-ahead buffer here, since that's the chunk
// table's job now, not the transport's.
type httpBackingStore struct {
	url    string
	client *fasthttp.Client
}

// NewHTTPBackingStore creates a BackingStore that issues HTTP range
// requests against url. A nil client gets a default one with generous
// timeouts, matching the teacher's ReadFromURL default.
func NewHTTPBackingStore(url string, client *fasthttp.Client) BackingStore {
	if client == nil {
		client = &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
	}
	return &httpBackingStore{url: url, client: client}
}

func (s *httpBackingStore) Name() string { return s.url }

func (s *httpBackingStore) Size(ctx context.Context) (int64, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod("HEAD")

	if err := s.do(ctx, req, resp); err != nil {
		return -1, &TransportError{Cause: err}
	}

	contentLength := resp.Header.ContentLength()
	if contentLength <= 0 {
		return -1, &TransportError{Cause: fmt.Errorf("HEAD %s: no Content-Length", s.url)}
	}
	return int64(contentLength), nil
}

func (s *httpBackingStore) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod("GET")
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	if err := s.do(ctx, req, resp); err != nil {
		return nil, &TransportError{Cause: err}
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusPartialContent && status != fasthttp.StatusOK {
		return nil, &TransportError{Cause: fmt.Errorf("GET %s: unexpected status %d", s.url, status)}
	}

	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

// do runs the fasthttp request, honoring ctx's deadline via DoDeadline
// when it has one.
func (s *httpBackingStore) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.client.DoDeadline(req, resp, deadline)
	}
	return s.client.Do(req, resp)
}

// fileBackingStore serves range reads from a local file via pread
// (os.File.ReadAt), per §4.A "local file (pread into a chunk-sized
// buffer)".
type fileBackingStore struct {
	path string
	f    *os.File
	size int64
}

// NewFileBackingStore opens path and returns a BackingStore over it.
func NewFileBackingStore(path string) (BackingStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &TransportError{Cause: err}
	}
	return &fileBackingStore{path: path, f: f, size: info.Size()}, nil
}

func (s *fileBackingStore) Name() string { return s.path }

func (s *fileBackingStore) Size(ctx context.Context) (int64, error) {
	return s.size, nil
}

func (s *fileBackingStore) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || offset >= s.size {
		return nil, &OffsetOutOfRangeError{Offset: offset}
	}
	if offset+length > s.size {
		length = s.size - offset
	}
	buf := make([]byte, length)
	n, err := s.f.ReadAt(buf, offset)
	if err != nil && n < len(buf) {
		return nil, &ShortReadError{Offset: offset, Wanted: len(buf), Got: n}
	}
	return buf[:n], nil
}

// Close releases the underlying file handle, if any. HTTP backing stores
// own no resources and need no Close.
func (s *fileBackingStore) Close() error {
	return s.f.Close()
}
