package cogeotiff

import (
	"bytes"
	"encoding/binary"
)

// tiffTag describes one IFD entry for the builders below: a value of at
// most 4 bytes is encoded inline in the entry itself; anything longer is
// appended after the IFD and referenced by offset, mirroring how a real
// TIFF writer decides between the two per §3 "Tag Entry".
type tiffTag struct {
	code  uint16
	typ   TagType
	count uint32
	value []byte
}

func shortTag(code uint16, v uint16) tiffTag {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return tiffTag{code: code, typ: TypeShort, count: 1, value: b}
}

func longTag(code uint16, v uint32) tiffTag {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return tiffTag{code: code, typ: TypeLong, count: 1, value: b}
}

func longsTag(code uint16, vs []uint32) tiffTag {
	var buf bytes.Buffer
	for _, v := range vs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return tiffTag{code: code, typ: TypeLong, count: uint32(len(vs)), value: buf.Bytes()}
}

func doublesTag(code uint16, vs []float64) tiffTag {
	var buf bytes.Buffer
	for _, v := range vs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return tiffTag{code: code, typ: TypeDouble, count: uint32(len(vs)), value: buf.Bytes()}
}

// buildTIFF assembles a minimal classic little-endian TIFF: an 8-byte
// header, a single IFD holding tags in the given order, and their
// out-of-line values appended after the IFD.
func buildTIFF(tags []tiffTag) []byte {
	const headerLen = 8
	ifdHeaderLen := 2 + len(tags)*ifdEntrySize + 4
	dataStart := headerLen + ifdHeaderLen

	var ifdBuf bytes.Buffer
	binary.Write(&ifdBuf, binary.LittleEndian, uint16(len(tags)))

	var dataBuf bytes.Buffer
	for _, tag := range tags {
		var valueField [4]byte
		if len(tag.value) <= 4 {
			copy(valueField[:], tag.value)
		} else {
			offset := dataStart + dataBuf.Len()
			binary.LittleEndian.PutUint32(valueField[:], uint32(offset))
			dataBuf.Write(tag.value)
		}
		binary.Write(&ifdBuf, binary.LittleEndian, tag.code)
		binary.Write(&ifdBuf, binary.LittleEndian, uint16(tag.typ))
		binary.Write(&ifdBuf, binary.LittleEndian, tag.count)
		ifdBuf.Write(valueField[:])
	}
	binary.Write(&ifdBuf, binary.LittleEndian, uint32(0)) // no next IFD

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint16(littleEndianMarker))
	binary.Write(&out, binary.LittleEndian, uint16(tiffMagic))
	binary.Write(&out, binary.LittleEndian, uint32(headerLen))
	out.Write(ifdBuf.Bytes())
	out.Write(dataBuf.Bytes())
	return out.Bytes()
}
