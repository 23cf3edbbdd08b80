package cogeotiff

import (
	"context"
	"encoding/binary"
	"log/slog"
)

const (
	littleEndianMarker = 0x4949 // "II"
	bigEndianMarker    = 0x4D4D // "MM"
	tiffMagic          = 42
)

// ifdEntrySize is the on-disk size of one tag entry: code, type, count,
// value-or-offset (§3 "Tag Entry").
const ifdEntrySize = 12

// ifd is one parsed Image File Directory: its tag map and the file offset
// of the next IFD in the chain (0 if this is the last one).
type ifd struct {
	offset int64
	tags   map[uint16]*TagEntry
	next   int64
}

// parseHeader reads and validates the 8-byte TIFF header (§4.C), setting
// the source's byte order and version as a side effect, and returns the
// offset of the first IFD.
func parseHeader(ctx context.Context, source ByteSource) (int64, error) {
	marker, err := source.Bytes(ctx, 0, 2)
	if err != nil {
		return 0, err
	}
	markerVal := uint16(marker[0])<<8 | uint16(marker[1])

	switch markerVal {
	case bigEndianMarker:
		return 0, &UnsupportedByteOrderError{Magic: markerVal}
	case littleEndianMarker:
		// supported; fall through
	default:
		return 0, &BadMagicError{Magic: markerVal}
	}

	source.setHeader(binary.LittleEndian, 0)

	version, err := source.Uint16(ctx, 2)
	if err != nil {
		return 0, err
	}
	if version != tiffMagic {
		return 0, &UnsupportedVersionError{Version: version}
	}
	source.setHeader(binary.LittleEndian, version)

	firstIFD, err := source.Uint32(ctx, 4)
	if err != nil {
		return 0, err
	}
	return int64(firstIFD), nil
}

// parseIFDChain walks the linked list of IFDs starting at firstOffset,
// iteratively (not recursively, per §4.C) so a malformed or hostile
// next-IFD cycle can't blow the stack; a visited-offsets set breaks any
// cycle instead.
func parseIFDChain(ctx context.Context, source ByteSource, firstOffset int64) ([]*ifd, error) {
	var chain []*ifd
	seen := make(map[int64]bool)

	offset := firstOffset
	for offset != 0 {
		if seen[offset] {
			break
		}
		seen[offset] = true

		cur, err := parseIFD(ctx, source, offset)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cur)
		offset = cur.next
	}
	return chain, nil
}

// parseIFD decodes the tag directory at offset: a uint16 entry count,
// that many 12-byte entries, then a uint32 offset to the next IFD.
func parseIFD(ctx context.Context, source ByteSource, offset int64) (*ifd, error) {
	count, err := source.Uint16(ctx, offset)
	if err != nil {
		return nil, err
	}

	entries := make(map[uint16]*TagEntry, count)
	base := offset + 2

	for i := 0; i < int(count); i++ {
		entryOffset := base + int64(i)*ifdEntrySize

		code, err := source.Uint16(ctx, entryOffset)
		if err != nil {
			return nil, err
		}
		typeCode, err := source.Uint16(ctx, entryOffset+2)
		if err != nil {
			return nil, err
		}
		tagCount, err := source.Uint32(ctx, entryOffset+4)
		if err != nil {
			return nil, err
		}

		if _, known := tagNames[code]; !known {
			sourceLogger(source).Debug("unknown tag code", "tag", code)
		}

		t := TagType(typeCode)
		sz, ok := t.size()
		if !ok {
			sourceLogger(source).Debug("skipping tag with unknown type", "tag", code, "type", typeCode)
			continue
		}

		if _, exists := entries[code]; exists {
			// duplicate tag code: keep the first occurrence (§9)
			continue
		}

		valueFieldOffset := entryOffset + 8
		totalSize := int64(sz) * int64(tagCount)

		if totalSize <= 4 {
			raw, err := source.Bytes(ctx, valueFieldOffset, 4)
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(raw[:totalSize], t, tagCount, source.ByteOrder())
			if err != nil {
				return nil, err
			}
			entries[code] = resolvedEntry(code, t, tagCount, v)
			continue
		}

		valueOffset32, err := source.Uint32(ctx, valueFieldOffset)
		if err != nil {
			return nil, err
		}
		valueOffset := int64(valueOffset32)

		if source.HasBytes(valueOffset, totalSize) {
			v, err := source.ReadType(ctx, valueOffset, t, tagCount)
			if err != nil {
				return nil, err
			}
			entries[code] = resolvedEntry(code, t, tagCount, v)
		} else {
			entries[code] = lazyEntry(code, t, tagCount, valueOffset, source)
		}
	}

	nextOffset, err := source.Uint32(ctx, base+int64(count)*ifdEntrySize)
	if err != nil {
		return nil, err
	}

	return &ifd{offset: offset, tags: entries, next: int64(nextOffset)}, nil
}

// get returns the tag entry for code, or nil if the IFD doesn't carry it.
func (d *ifd) get(code uint16) *TagEntry {
	return d.tags[code]
}

// sourceLogger returns the source's configured logger, falling back to
// slog.Default() for any ByteSource that isn't a *chunkedSource (there
// is none, in practice — the interface is sealed to this package).
func sourceLogger(source ByteSource) *slog.Logger {
	if cs, ok := source.(*chunkedSource); ok && cs.logger != nil {
		return cs.logger
	}
	return slog.Default()
}
