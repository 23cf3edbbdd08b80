package cogeotiff

// Tag codes this module resolves by name (§6 "Supported tags"). Any other
// code is still parsed into the IFD's tag map, just without a friendly
// name in TagList(); unknown-code tolerance is handled in ifd.go, not here.
const (
	TagImageWidth                = 256
	TagImageLength                = 257
	TagBitsPerSample              = 258
	TagCompression                = 259
	TagPhotometricInterpretation  = 262
	TagSamplesPerPixel            = 277
	TagRowsPerStrip               = 278
	TagStripOffsets               = 273
	TagStripByteCounts            = 279
	TagTileWidth                  = 322
	TagTileLength                 = 323
	TagTileOffsets                = 324
	TagTileByteCounts             = 325
	TagSampleFormat               = 339
	TagModelPixelScale            = 33550
	TagModelTiepoint              = 33922
	TagGeoKeyDirectory            = 34735
	TagGeoDoubleParams            = 34736
	TagGeoAsciiParams             = 34737
)

// tagNames maps a tag code to its human name for Image.TagList().
var tagNames = map[uint16]string{
	TagImageWidth:               "ImageWidth",
	TagImageLength:              "ImageLength",
	TagBitsPerSample:            "BitsPerSample",
	TagCompression:              "Compression",
	TagPhotometricInterpretation: "PhotometricInterpretation",
	TagSamplesPerPixel:          "SamplesPerPixel",
	TagRowsPerStrip:             "RowsPerStrip",
	TagStripOffsets:             "StripOffsets",
	TagStripByteCounts:          "StripByteCounts",
	TagTileWidth:                "TileWidth",
	TagTileLength:               "TileLength",
	TagTileOffsets:              "TileOffsets",
	TagTileByteCounts:           "TileByteCounts",
	TagSampleFormat:             "SampleFormat",
	TagModelPixelScale:          "ModelPixelScale",
	TagModelTiepoint:            "ModelTiepoint",
	TagGeoKeyDirectory:          "GeoKeyDirectory",
	TagGeoDoubleParams:          "GeoDoubleParams",
	TagGeoAsciiParams:           "GeoAsciiParams",
}

// compressionMediaTypes is the partial compression→media-type table of §6.
// Unknown codes resolve to "" (null), not a zero-valued default.
var compressionMediaTypes = map[uint16]string{
	1:     "none",
	5:     "image/x-lzw",
	6:     "image/jpeg", // old-style JPEG
	7:     "image/jpeg",
	8:     "image/deflate",
	34712: "image/jp2",
	50001: "image/webp",
}

// Compression returns the media-type string for a TIFF Compression tag
// value, or "" if the code is unknown (§3 "compression").
func Compression(code uint16) string {
	return compressionMediaTypes[code]
}

// GeoKey ids used by Image.CRS(); a tiny slice of the full GeoTIFF GeoKey
// registry, just enough to report a best-effort EPSG code (supplemental,
// SPEC_FULL.md §3).
const (
	geoKeyGTModelType      = 1024
	geoKeyGeographicType   = 2048
	geoKeyProjectedCSType  = 3072
)
