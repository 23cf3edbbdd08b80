package cogeotiff

import (
	"log/slog"

	"github.com/valyala/fasthttp"
)

// options holds the configurable knobs of NewHTTPSource, NewFileSource and
// Open (§6), set via Option functions using the functional-options pattern.
type options struct {
	chunkSize  int64
	httpClient *fasthttp.Client
	logger     *slog.Logger
}

func defaultOptions() *options {
	return &options{
		chunkSize: defaultChunkSize,
		logger:    slog.Default(),
	}
}

// Option configures NewHTTPSource, NewFileSource and Open. The chunk size
// and HTTP client take effect when building a source; the logger takes
// effect in Open.
type Option func(*options)

// WithChunkSize overrides the Byte Source's fixed chunk size. Values below
// 8 bytes (the TIFF header) are rejected in favor of the default.
func WithChunkSize(size int64) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithHTTPClient overrides the fasthttp.Client used by HTTP backing
// stores created via NewHTTPSource.
func WithHTTPClient(client *fasthttp.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger overrides the logger used for tolerant, debug-level
// diagnostics (unknown tag codes, unknown tag types).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
