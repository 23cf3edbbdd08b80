package cogeotiff

// TagType is a TIFF tag's on-disk data type code (TIFF 6.0 §2, GeoTIFF
// extensions for rational/float/double carried through unchanged).
type TagType uint16

const (
	TypeByte      TagType = 1
	TypeASCII     TagType = 2
	TypeShort     TagType = 3
	TypeLong      TagType = 4
	TypeRational  TagType = 5
	TypeSByte     TagType = 6
	TypeUndefined TagType = 7
	TypeSShort    TagType = 8
	TypeSLong     TagType = 9
	TypeSRational TagType = 10
	TypeFloat     TagType = 11
	TypeDouble    TagType = 12
)

// typeSizes is the type_size table of spec §3 ("Tag Type"): the on-disk
// byte width of one element of the given type.
var typeSizes = map[TagType]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
}

// size returns the on-disk byte width of one element of t, and whether t is
// a known type. An unknown type is skipped by the IFD parser rather than
// aborting the parse.
func (t TagType) size() (uint32, bool) {
	sz, ok := typeSizes[t]
	return sz, ok
}

// Rational is a TIFF RATIONAL: numerator over denominator. The core never
// divides these; consumers that want a float do so themselves.
type Rational struct {
	Numerator, Denominator uint32
}

// SRational is a TIFF SRATIONAL (signed numerator and denominator).
type SRational struct {
	Numerator, Denominator int32
}
