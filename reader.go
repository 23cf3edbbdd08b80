package cogeotiff

import (
	"encoding/binary"
	"fmt"
	"math"
)

// decodeValue implements the Typed Reader (§4.B): given a raw byte slice
// already sized to count*type_size, decode it into a scalar or ordered
// sequence per TIFF's primitive table, honoring byteOrder. ascii stops at
// the first NUL; a count of 1 collapses to a bare scalar instead of a
// length-1 slice.
func decodeValue(b []byte, t TagType, count uint32, order binary.ByteOrder) (interface{}, error) {
	sz, ok := t.size()
	if !ok {
		return nil, fmt.Errorf("cogeotiff: unknown tag type %d", t)
	}
	if uint32(len(b)) < count*sz {
		return nil, &ShortReadError{Wanted: int(count * sz), Got: len(b)}
	}

	switch t {
	case TypeByte, TypeUndefined:
		vals := append([]byte(nil), b[:count]...)
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeSByte:
		vals := make([]int8, count)
		for i := range vals {
			vals[i] = int8(b[i])
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeASCII:
		n := count
		for i := uint32(0); i < count; i++ {
			if b[i] == 0 {
				n = i
				break
			}
		}
		return string(b[:n]), nil

	case TypeShort:
		vals := make([]uint16, count)
		for i := range vals {
			vals[i] = order.Uint16(b[i*2 : i*2+2])
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeSShort:
		vals := make([]int16, count)
		for i := range vals {
			vals[i] = int16(order.Uint16(b[i*2 : i*2+2]))
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeLong:
		vals := make([]uint32, count)
		for i := range vals {
			vals[i] = order.Uint32(b[i*4 : i*4+4])
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeSLong:
		vals := make([]int32, count)
		for i := range vals {
			vals[i] = int32(order.Uint32(b[i*4 : i*4+4]))
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeFloat:
		vals := make([]float32, count)
		for i := range vals {
			vals[i] = math.Float32frombits(order.Uint32(b[i*4 : i*4+4]))
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeDouble:
		vals := make([]float64, count)
		for i := range vals {
			vals[i] = math.Float64frombits(order.Uint64(b[i*8 : i*8+8]))
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeRational:
		vals := make([]Rational, count)
		for i := range vals {
			vals[i] = Rational{
				Numerator:   order.Uint32(b[i*8 : i*8+4]),
				Denominator: order.Uint32(b[i*8+4 : i*8+8]),
			}
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil

	case TypeSRational:
		vals := make([]SRational, count)
		for i := range vals {
			vals[i] = SRational{
				Numerator:   int32(order.Uint32(b[i*8 : i*8+4])),
				Denominator: int32(order.Uint32(b[i*8+4 : i*8+8])),
			}
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil
	}

	return nil, fmt.Errorf("cogeotiff: unhandled tag type %d", t)
}
