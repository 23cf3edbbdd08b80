package cogeotiff

import (
	"context"
	"errors"

	"github.com/valyala/fasthttp"
)

// COG is an opened Cloud-Optimized GeoTIFF: its Byte Source and the
// parsed chain of Images (the main image plus any overviews), in IFD
// order.
type COG struct {
	source *chunkedSource
	images []*Image
}

// Open parses source's TIFF header and IFD chain and returns a COG ready
// for metadata inspection and tile reads. Only the header and directory
// structure are read eagerly; tag values whose backing chunk isn't
// resident stay lazy until fetched (§4.C).
func Open(ctx context.Context, source ByteSource, opts ...Option) (*COG, error) {
	cs, ok := source.(*chunkedSource)
	if !ok {
		return nil, &TransportError{Cause: errUnsupportedSource}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cs.logger = o.logger

	firstIFDOffset, err := parseHeader(ctx, cs)
	if err != nil {
		return nil, err
	}

	chain, err := parseIFDChain(ctx, cs, firstIFDOffset)
	if err != nil {
		return nil, err
	}

	cog := &COG{source: cs}
	images := make([]*Image, len(chain))
	for i, dir := range chain {
		images[i] = &Image{cog: cog, dir: dir}
	}
	cog.images = images
	return cog, nil
}

var errUnsupportedSource = errors.New("cogeotiff: ByteSource must come from NewHTTPSource or NewFileSource")

// NewHTTPSource builds a ByteSource over a remote COG, fetched in chunks
// via HTTP range requests.
func NewHTTPSource(ctx context.Context, url string, opts ...Option) (ByteSource, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	var client *fasthttp.Client
	if o.httpClient != nil {
		client = o.httpClient
	}
	backing := NewHTTPBackingStore(url, client)
	return newChunkedSource(ctx, backing, o.chunkSize)
}

// NewFileSource builds a ByteSource over a local COG file, fetched in
// chunks via pread.
func NewFileSource(ctx context.Context, path string, opts ...Option) (ByteSource, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	backing, err := NewFileBackingStore(path)
	if err != nil {
		return nil, err
	}
	return newChunkedSource(ctx, backing, o.chunkSize)
}

// Images returns every Image in IFD order: the main image first, then any
// overviews.
func (c *COG) Images() []*Image {
	return c.images
}

// Image returns the Image at IFD index z: 0 for the main image, 1+ for
// successive overviews. Returns NoSuchOverviewError if z is out of range.
func (c *COG) Image(z int) (*Image, error) {
	if z < 0 || z >= len(c.images) {
		return nil, &NoSuchOverviewError{Z: z}
	}
	return c.images[z], nil
}

// Name returns the underlying source's name (a URL or file path).
func (c *COG) Name() string { return c.source.Name() }

// Version returns the TIFF version read from the header (42, classic
// TIFF; BigTIFF's 43 is rejected during Open).
func (c *COG) Version() uint16 { return c.source.Version() }

// ChunkSize returns the Byte Source's fixed chunk size in bytes.
func (c *COG) ChunkSize() int64 { return c.source.ChunkSize() }

// Chunks returns a snapshot of the Byte Source's chunk table, for
// introspection and testing.
func (c *COG) Chunks() map[int64]ChunkState { return c.source.Chunks() }
