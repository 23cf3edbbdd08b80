package cogeotiff

import "fmt"

// BadMagicError reports a TIFF header whose first two bytes are neither
// the little-endian nor the big-endian byte-order mark.
type BadMagicError struct {
	Magic uint16
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("cogeotiff: invalid TIFF magic: 0x%04x", e.Magic)
}

// UnsupportedVersionError reports a TIFF version other than 42 (classic
// TIFF). BigTIFF (version 43) is explicitly rejected.
type UnsupportedVersionError struct {
	Version uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("cogeotiff: unsupported TIFF version: %d", e.Version)
}

// UnsupportedByteOrderError reports a big-endian ("MM") stream. The initial
// profile only decodes little-endian TIFFs.
type UnsupportedByteOrderError struct {
	Magic uint16
}

func (e *UnsupportedByteOrderError) Error() string {
	return fmt.Sprintf("cogeotiff: unsupported byte order for magic 0x%04x (big-endian not implemented)", e.Magic)
}

// OffsetOutOfRangeError reports a read whose offset falls beyond the
// source's known length.
type OffsetOutOfRangeError struct {
	Offset int64
}

func (e *OffsetOutOfRangeError) Error() string {
	return fmt.Sprintf("cogeotiff: offset %d out of range", e.Offset)
}

// ShortReadError reports a backing-store read that returned fewer bytes
// than requested.
type ShortReadError struct {
	Offset   int64
	Wanted   int
	Got      int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("cogeotiff: short read at offset %d: wanted %d bytes, got %d", e.Offset, e.Wanted, e.Got)
}

// TransportError wraps a failure from the backing store (HTTP transport,
// file I/O). Retry policy is the caller's choice.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cogeotiff: transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// MissingTagError reports that an accessor required a tag which is absent
// or malformed (wrong length) on the IFD.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("cogeotiff: missing tag: %s", e.Tag)
}

// NoSuchOverviewError reports a request for an overview index outside
// [0, len(images)).
type NoSuchOverviewError struct {
	Z int
}

func (e *NoSuchOverviewError) Error() string {
	return fmt.Sprintf("cogeotiff: no such overview: %d", e.Z)
}

// NotTiledError reports a tile request against a stripped (non-tiled)
// image.
type NotTiledError struct{}

func (e *NotTiledError) Error() string {
	return "cogeotiff: image is not tiled"
}

// TileOutOfRangeError reports tile coordinates outside the image's tile
// grid.
type TileOutOfRangeError struct {
	X, Y int
}

func (e *TileOutOfRangeError) Error() string {
	return fmt.Sprintf("cogeotiff: tile (%d, %d) out of range", e.X, e.Y)
}
