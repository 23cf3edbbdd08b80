package cogeotiff

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Image is one entry of the IFD chain: the main image (IFD 0) or one of
// its overviews, paired back to the COG that owns its Byte Source so tile
// reads and lazy tag fetches have somewhere to go.
type Image struct {
	cog *COG
	dir *ifd
}

// Size returns the image's width and height in pixels (ImageWidth /
// ImageLength).
func (img *Image) Size(ctx context.Context) (width, height int, err error) {
	w, err := img.uintTag(ctx, TagImageWidth)
	if err != nil {
		return 0, 0, err
	}
	h, err := img.uintTag(ctx, TagImageLength)
	if err != nil {
		return 0, 0, err
	}
	return int(w), int(h), nil
}

// IsTiled reports whether this image carries TileWidth/TileLength, as
// opposed to being organized in strips.
func (img *Image) IsTiled() bool {
	return img.dir.get(TagTileWidth) != nil && img.dir.get(TagTileLength) != nil
}

// TileSize returns the tile's pixel dimensions. Returns NotTiledError if
// the image is strip-organized.
func (img *Image) TileSize(ctx context.Context) (width, height int, err error) {
	if !img.IsTiled() {
		return 0, 0, &NotTiledError{}
	}
	w, err := img.uintTag(ctx, TagTileWidth)
	if err != nil {
		return 0, 0, err
	}
	h, err := img.uintTag(ctx, TagTileLength)
	if err != nil {
		return 0, 0, err
	}
	return int(w), int(h), nil
}

// tileGrid returns the tile grid dimensions nx, ny: the number of tile
// columns and rows covering the full image, each rounded up (§3 "tile
// index"). nx drives row-major tile indexing, not ny — see GetTileRaw.
func (img *Image) tileGrid(ctx context.Context) (nx, ny int, err error) {
	width, height, err := img.Size(ctx)
	if err != nil {
		return 0, 0, err
	}
	tw, th, err := img.TileSize(ctx)
	if err != nil {
		return 0, 0, err
	}
	nx = (width + tw - 1) / tw
	ny = (height + th - 1) / th
	return nx, ny, nil
}

// TileCount returns the total number of tiles covering the image
// (nx * ny).
func (img *Image) TileCount(ctx context.Context) (int, error) {
	nx, ny, err := img.tileGrid(ctx)
	if err != nil {
		return 0, err
	}
	return nx * ny, nil
}

// Origin returns the image's top-left geographic coordinate, derived from
// ModelTiepoint. Returns MissingTagError if ModelTiepoint isn't present or
// doesn't carry the expected 6 values.
func (img *Image) Origin(ctx context.Context) (orb.Point, error) {
	tie := img.dir.get(TagModelTiepoint)
	if tie == nil {
		return orb.Point{}, &MissingTagError{Tag: "ModelTiepoint"}
	}
	v, err := tie.Fetch(ctx)
	if err != nil {
		return orb.Point{}, err
	}
	vals, ok := v.([]float64)
	if !ok || len(vals) != 6 {
		return orb.Point{}, &MissingTagError{Tag: "ModelTiepoint"}
	}
	// tie point layout: pixelX, pixelY, pixelZ, geoX, geoY, geoZ
	return orb.Point{vals[3], vals[4]}, nil
}

// Resolution returns the per-pixel ground resolution in (x, y, z),
// derived from ModelPixelScale. The Y component is negated relative to
// the tag's raw value: pixel-Y grows southward while model-Y grows
// northward (§3 "resolution"). Returns MissingTagError if the tag is
// absent.
func (img *Image) Resolution(ctx context.Context) (x, y, z float64, err error) {
	scale := img.dir.get(TagModelPixelScale)
	if scale == nil {
		return 0, 0, 0, &MissingTagError{Tag: "ModelPixelScale"}
	}
	v, err := scale.Fetch(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	vals, ok := v.([]float64)
	if !ok || len(vals) < 2 {
		return 0, 0, 0, &MissingTagError{Tag: "ModelPixelScale"}
	}
	if len(vals) >= 3 {
		z = vals[2]
	}
	return vals[0], -vals[1], z, nil
}

// BBox returns the image's geographic bounding box, built from Origin,
// Resolution and Size per §3: x2 = x1 + res.x*W, y2 = y1 + res.y*L, bbox
// = [min(x1,x2), min(y1,y2), max(x1,x2), max(y1,y2)] — computed by
// min/max rather than assuming either axis' resolution is positive.
func (img *Image) BBox(ctx context.Context) (orb.Bound, error) {
	origin, err := img.Origin(ctx)
	if err != nil {
		return orb.Bound{}, err
	}
	resX, resY, _, err := img.Resolution(ctx)
	if err != nil {
		return orb.Bound{}, err
	}
	width, height, err := img.Size(ctx)
	if err != nil {
		return orb.Bound{}, err
	}

	x1, y1 := origin[0], origin[1]
	x2 := x1 + resX*float64(width)
	y2 := y1 + resY*float64(height)

	minX, maxX := x1, x2
	if x2 < x1 {
		minX, maxX = x2, x1
	}
	minY, maxY := y1, y2
	if y2 < y1 {
		minY, maxY = y2, y1
	}

	return orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{maxX, maxY},
	}, nil
}

// Compression returns the media type for the image's Compression tag, or
// "" if the tag is absent or the code is unrecognized.
func (img *Image) Compression(ctx context.Context) (string, error) {
	c := img.dir.get(TagCompression)
	if c == nil {
		return "", nil
	}
	code, err := img.uintTag(ctx, TagCompression)
	if err != nil {
		return "", err
	}
	return Compression(uint16(code)), nil
}

// TagList returns the friendly names of every tag carried by this image's
// IFD that the registry recognizes.
func (img *Image) TagList() []string {
	names := make([]string, 0, len(img.dir.tags))
	for code := range img.dir.tags {
		if name := tagNames[code]; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GeoKeys returns the raw GeoKeyDirectory entries as key id -> value,
// resolving SHORT-inline, double-indirect and ASCII-indirect keys per the
// GeoTIFF key directory layout. Best-effort: malformed directories return
// a nil map rather than an error.
func (img *Image) GeoKeys(ctx context.Context) (map[uint16]interface{}, error) {
	dirTag := img.dir.get(TagGeoKeyDirectory)
	if dirTag == nil {
		return nil, nil
	}
	raw, err := dirTag.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	dir, ok := raw.([]uint16)
	if !ok || len(dir) < 4 {
		return nil, nil
	}

	var doubles []float64
	if dbl := img.dir.get(TagGeoDoubleParams); dbl != nil {
		if v, err := dbl.Fetch(ctx); err == nil {
			doubles, _ = v.([]float64)
		}
	}
	var ascii string
	if a := img.dir.get(TagGeoAsciiParams); a != nil {
		if v, err := a.Fetch(ctx); err == nil {
			ascii, _ = v.(string)
		}
	}

	numKeys := int(dir[3])
	keys := make(map[uint16]interface{}, numKeys)

	for i := 4; i+3 < len(dir) && (i-4)/4 < numKeys; i += 4 {
		keyID := dir[i]
		location := dir[i+1]
		count := dir[i+2]
		valueOrOffset := dir[i+3]

		switch location {
		case 0:
			keys[keyID] = valueOrOffset
		case TagGeoDoubleParams:
			start := int(valueOrOffset)
			end := start + int(count)
			if start >= 0 && end <= len(doubles) {
				if count == 1 {
					keys[keyID] = doubles[start]
				} else {
					keys[keyID] = doubles[start:end]
				}
			}
		case TagGeoAsciiParams:
			start := int(valueOrOffset)
			end := start + int(count) - 1 // exclude the terminating '|'
			if start >= 0 && end <= len(ascii) && end >= start {
				keys[keyID] = ascii[start:end]
			}
		}
	}
	return keys, nil
}

// CRS returns a best-effort "EPSG:n" string derived from the image's
// GeoKeys, or "" if none of the CRS-identifying keys are present.
func (img *Image) CRS(ctx context.Context) (string, error) {
	keys, err := img.GeoKeys(ctx)
	if err != nil || keys == nil {
		return "", err
	}
	if v, ok := keys[geoKeyProjectedCSType]; ok {
		if code, ok := toUint(v); ok && code != 0 {
			return fmt.Sprintf("EPSG:%d", code), nil
		}
	}
	if v, ok := keys[geoKeyGeographicType]; ok {
		if code, ok := toUint(v); ok && code != 0 {
			return fmt.Sprintf("EPSG:%d", code), nil
		}
	}
	return "", nil
}

// uintTag fetches code and coerces it to a uint32 scalar, tolerating the
// SHORT/LONG ambiguity real-world TIFFs show for these tags.
func (img *Image) uintTag(ctx context.Context, code uint16) (uint32, error) {
	entry := img.dir.get(code)
	if entry == nil {
		return 0, &MissingTagError{Tag: tagNames[code]}
	}
	v, err := entry.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	n, ok := toUint(v)
	if !ok {
		return 0, &MissingTagError{Tag: tagNames[code]}
	}
	return n, nil
}

// toUint coerces any of the integer tag value shapes ReadType can produce
// into a plain uint32.
func toUint(v interface{}) (uint32, bool) {
	switch val := v.(type) {
	case uint16:
		return uint32(val), true
	case uint32:
		return val, true
	case []uint16:
		if len(val) > 0 {
			return uint32(val[0]), true
		}
	case []uint32:
		if len(val) > 0 {
			return val[0], true
		}
	}
	return 0, false
}

// ParseEPSGCode extracts the numeric code from an "EPSG:n" string.
func ParseEPSGCode(crs string) (int, error) {
	if !strings.HasPrefix(crs, "EPSG:") {
		return 0, fmt.Errorf("cogeotiff: invalid CRS format: %s", crs)
	}
	return strconv.Atoi(crs[len("EPSG:"):])
}
