package cogeotiff

import (
	"bytes"
	"context"
	"testing"
)

// buildTiledTIFF assembles a tiled TIFF whose TileOffsets point at real
// trailing payload bytes, one distinguishable payload per tile so the
// row-major tile-index math can be checked end to end.
func buildTiledTIFF(width, height, tileW, tileH uint32, payloads [][]byte) []byte {
	n := len(payloads)
	byteCounts := make([]uint32, n)
	for i, p := range payloads {
		byteCounts[i] = uint32(len(p))
	}
	placeholder := make([]uint32, n)

	tags := []tiffTag{
		longTag(TagImageWidth, width),
		longTag(TagImageLength, height),
		longTag(TagTileWidth, tileW),
		longTag(TagTileLength, tileH),
		shortTag(TagCompression, 1),
		longsTag(TagTileOffsets, placeholder),
		longsTag(TagTileByteCounts, byteCounts),
	}
	base := buildTIFF(tags)
	trailerStart := len(base)

	offsets := make([]uint32, n)
	cur := trailerStart
	for i, p := range payloads {
		offsets[i] = uint32(cur)
		cur += len(p)
	}
	tags[5] = longsTag(TagTileOffsets, offsets)
	final := buildTIFF(tags)

	var trailer bytes.Buffer
	for _, p := range payloads {
		trailer.Write(p)
	}
	return append(final, trailer.Bytes()...)
}

// tilePayloads builds one distinct 4-byte payload per tile, tagged with
// its intended (x, y) so a misrouted index is easy to spot.
func tilePayloads(nx, ny int) [][]byte {
	payloads := make([][]byte, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			payloads[y*nx+x] = []byte{0xAA, byte(x), byte(y), 0xBB}
		}
	}
	return payloads
}

func TestGetTileRawIndexing(t *testing.T) {
	ctx := context.Background()
	// 600x400 image, 256x256 tiles: nx = ceil(600/256) = 3, ny = ceil(400/256) = 2.
	const nx, ny = 3, 2
	data := buildTiledTIFF(600, 400, 256, 256, tilePayloads(nx, ny))
	cog := openTestCOG(t, data, defaultChunkSize)

	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			tile, err := cog.GetTileRaw(ctx, x, y, 0)
			if err != nil {
				t.Fatalf("GetTileRaw(%d,%d): %v", x, y, err)
			}
			want := []byte{0xAA, byte(x), byte(y), 0xBB}
			if !bytes.Equal(tile.Data, want) {
				t.Errorf("tile (%d,%d): expected %v, got %v", x, y, want, tile.Data)
			}
		}
	}
}

func TestGetTileRawBoundaries(t *testing.T) {
	ctx := context.Background()
	const nx, ny = 3, 2
	data := buildTiledTIFF(600, 400, 256, 256, tilePayloads(nx, ny))
	cog := openTestCOG(t, data, defaultChunkSize)

	// Last valid tile in the grid.
	if _, err := cog.GetTileRaw(ctx, nx-1, ny-1, 0); err != nil {
		t.Errorf("expected (%d,%d) to be a valid tile, got %v", nx-1, ny-1, err)
	}

	// One past the edge in x, and in y, must both be rejected.
	if _, err := cog.GetTileRaw(ctx, nx, 0, 0); err == nil {
		t.Error("expected an out-of-range error for x == nx")
	} else if _, ok := err.(*TileOutOfRangeError); !ok {
		t.Errorf("expected *TileOutOfRangeError, got %T", err)
	}
	if _, err := cog.GetTileRaw(ctx, 0, ny, 0); err == nil {
		t.Error("expected an out-of-range error for y == ny")
	} else if _, ok := err.(*TileOutOfRangeError); !ok {
		t.Errorf("expected *TileOutOfRangeError, got %T", err)
	}
}

func TestGetTileRawNotTiled(t *testing.T) {
	ctx := context.Background()
	data := buildTIFF([]tiffTag{
		longTag(TagImageWidth, 10),
		longTag(TagImageLength, 10),
	})
	cog := openTestCOG(t, data, defaultChunkSize)

	if _, err := cog.GetTileRaw(ctx, 0, 0, 0); err == nil {
		t.Fatal("expected NotTiledError for a strip-organized image")
	} else if _, ok := err.(*NotTiledError); !ok {
		t.Errorf("expected *NotTiledError, got %T", err)
	}
}

func TestGetTileRawLazyConcurrentResolution(t *testing.T) {
	ctx := context.Background()
	const nx, ny = 3, 2
	data := buildTiledTIFF(600, 400, 256, 256, tilePayloads(nx, ny))

	// A small chunk size keeps TileOffsets/TileByteCounts lazy at parse
	// time, exercising the errgroup-based concurrent resolution path.
	backing := newMemoryBackingStore(data)
	src, err := newChunkedSource(ctx, backing, 32)
	if err != nil {
		t.Fatalf("newChunkedSource: %v", err)
	}
	cog, err := Open(ctx, src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tile, err := cog.GetTileRaw(ctx, 2, 1, 0)
	if err != nil {
		t.Fatalf("GetTileRaw: %v", err)
	}
	want := []byte{0xAA, 2, 1, 0xBB}
	if !bytes.Equal(tile.Data, want) {
		t.Errorf("expected %v, got %v", want, tile.Data)
	}
}
