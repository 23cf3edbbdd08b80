package cogeotiff

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileBound returns the geographic bound of slippy-map tile (x, y) at
// zoom z, independent of any COG — useful for comparing a requested
// map tile's footprint against an image's BBox before calling
// GetTileRaw with COG-native tile-grid coordinates.
func TileBound(x, y, z uint32) orb.Bound {
	return maptile.New(x, y, maptile.Zoom(z)).Bound()
}

// ZoomToIFDIndex converts a "map zoom" convention, where larger means
// more detail, into the IFD chain's own convention, where index 0 is the
// highest-resolution image and later entries are lower-resolution
// overviews (§4.E "Note on Z convention"). numImages is cog.Images()'s
// length; callers that think in map zoom must invert before calling
// GetTileRaw.
func ZoomToIFDIndex(numImages, zoom int) int {
	return numImages - 1 - zoom
}

// TileKey mirrors the teacher's ReadTile(tile maptile.Tile, ...) call
// shape: given a slippy-map tile, returns the COG-native (x, y, ifdIndex)
// triple GetTileRaw expects, inverting zoom per ZoomToIFDIndex.
func TileKey(tile maptile.Tile, numImages int) (x, y, ifdIndex int) {
	return int(tile.X), int(tile.Y), ZoomToIFDIndex(numImages, int(tile.Z))
}

// PolygonFromBounds builds a closed ring polygon from a bounding box,
// going counter-clockwise from the bottom-left corner.
func PolygonFromBounds(bound orb.Bound) orb.Polygon {
	if bound.IsEmpty() {
		return orb.Polygon{}
	}
	ring := orb.Ring{
		{bound.Min[0], bound.Min[1]},
		{bound.Max[0], bound.Min[1]},
		{bound.Max[0], bound.Max[1]},
		{bound.Min[0], bound.Max[1]},
		{bound.Min[0], bound.Min[1]},
	}
	return orb.Polygon{ring}
}

// Polygon returns the image's footprint as a closed polygon, derived
// from BBox.
func (img *Image) Polygon(ctx context.Context) (orb.Polygon, error) {
	bbox, err := img.BBox(ctx)
	if err != nil {
		return orb.Polygon{}, err
	}
	return PolygonFromBounds(bbox), nil
}

// CornerPoints returns the image's four corners in geographic
// coordinates, ordered top-left, top-right, bottom-right, bottom-left.
func (img *Image) CornerPoints(ctx context.Context) ([4]orb.Point, error) {
	origin, err := img.Origin(ctx)
	if err != nil {
		return [4]orb.Point{}, err
	}
	resX, resY, _, err := img.Resolution(ctx)
	if err != nil {
		return [4]orb.Point{}, err
	}
	width, height, err := img.Size(ctx)
	if err != nil {
		return [4]orb.Point{}, err
	}

	// resY is already negated (south-negative) by Resolution, so the
	// bottom edge is origin[1] + height*resY, not a subtraction.
	topLeft := origin
	topRight := orb.Point{origin[0] + float64(width)*resX, origin[1]}
	bottomRight := orb.Point{origin[0] + float64(width)*resX, origin[1] + float64(height)*resY}
	bottomLeft := orb.Point{origin[0], origin[1] + float64(height)*resY}

	return [4]orb.Point{topLeft, topRight, bottomRight, bottomLeft}, nil
}
