package cogeotiff

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Tile is one tile's compressed payload as stored on disk: the module
// stops at the compressed bytes and their media type (§1 "decoding
// compressed pixel payloads" is explicitly out of scope).
type Tile struct {
	MediaType string
	Data      []byte
}

// GetTileRaw returns tile (x, y) from the image at IFD index z (0 is the
// main image; see ZoomToIFDIndex for map-zoom input), without decoding
// its compressed payload. x and y are tile-grid coordinates, not pixel
// coordinates: x in [0, nx), y in [0, ny).
func (c *COG) GetTileRaw(ctx context.Context, x, y, z int) (*Tile, error) {
	img, err := c.Image(z)
	if err != nil {
		return nil, err
	}
	return img.GetTileRaw(ctx, x, y)
}

// GetTileRaw is the per-image tile locator (§4.E): it computes the
// tile's row-major index, resolves TileOffsets/TileByteCounts (fetching
// them concurrently if both are still lazy), and reads the tile's raw
// bytes from the source.
func (img *Image) GetTileRaw(ctx context.Context, x, y int) (*Tile, error) {
	if !img.IsTiled() {
		return nil, &NotTiledError{}
	}

	nx, ny, err := img.tileGrid(ctx)
	if err != nil {
		return nil, err
	}
	if x < 0 || x >= nx || y < 0 || y >= ny {
		return nil, &TileOutOfRangeError{X: x, Y: y}
	}

	// Row-major: index advances by image width in tiles (nx), not height
	// in tiles (ny) — a transposed nx/ny here silently reads the wrong
	// tile on any non-square grid.
	idx := y*nx + x

	offsets, byteCounts, err := img.tileTables(ctx)
	if err != nil {
		return nil, err
	}
	if idx >= len(offsets) || idx >= len(byteCounts) {
		return nil, &TileOutOfRangeError{X: x, Y: y}
	}

	offset := int64(offsets[idx])
	length := int64(byteCounts[idx])

	data, err := img.cog.source.Bytes(ctx, offset, length)
	if err != nil {
		return nil, err
	}

	mediaType, err := img.Compression(ctx)
	if err != nil {
		return nil, err
	}

	return &Tile{MediaType: mediaType, Data: data}, nil
}

// tileTables resolves the TileOffsets and TileByteCounts tags, fetching
// both concurrently via an errgroup when they are still lazy (§4.E,
// §5 "bounded internal concurrency").
func (img *Image) tileTables(ctx context.Context) (offsets, byteCounts []uint32, err error) {
	offsetsEntry := img.dir.get(TagTileOffsets)
	if offsetsEntry == nil {
		return nil, nil, &MissingTagError{Tag: "TileOffsets"}
	}
	byteCountsEntry := img.dir.get(TagTileByteCounts)
	if byteCountsEntry == nil {
		return nil, nil, &MissingTagError{Tag: "TileByteCounts"}
	}

	g, gctx := errgroup.WithContext(ctx)

	var offsetsVal, byteCountsVal interface{}
	g.Go(func() error {
		v, err := offsetsEntry.Fetch(gctx)
		if err != nil {
			return err
		}
		offsetsVal = v
		return nil
	})
	g.Go(func() error {
		v, err := byteCountsEntry.Fetch(gctx)
		if err != nil {
			return err
		}
		byteCountsVal = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	offsets, ok := toUintSlice(offsetsVal)
	if !ok {
		return nil, nil, &MissingTagError{Tag: "TileOffsets"}
	}
	byteCounts, ok = toUintSlice(byteCountsVal)
	if !ok {
		return nil, nil, &MissingTagError{Tag: "TileByteCounts"}
	}
	return offsets, byteCounts, nil
}

// toUintSlice coerces a decoded SHORT or LONG tag value (scalar or slice)
// into a []uint32.
func toUintSlice(v interface{}) ([]uint32, bool) {
	switch val := v.(type) {
	case []uint32:
		return val, true
	case []uint16:
		out := make([]uint32, len(val))
		for i, e := range val {
			out[i] = uint32(e)
		}
		return out, true
	case uint32:
		return []uint32{val}, true
	case uint16:
		return []uint32{uint32(val)}, true
	}
	return nil, false
}
