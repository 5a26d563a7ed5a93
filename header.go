package dam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// header is the fixed 512-byte archive header described in spec.md §3.
// Layout, in order: magic (4B), version*100 (4B unsigned), header_offset
// (8B unsigned), block_offset (8B unsigned), index_offset (8B unsigned),
// source_path (zero-terminated), zero padding to HeaderSize.
//
// The accompanying ASCII diagram in the original source claims the
// offsets are 16 bytes wide; the actual on-disk layout uses 8-byte
// offsets, and that is what is implemented here.
type header struct {
	magic        [4]byte
	version      uint32
	headerOffset uint64
	blockOffset  uint64
	indexOffset  uint64
	sourcePath   string
}

const headerFixedSize = 4 + 4 + 8 + 8 + 8 // magic + version + 3 offsets

// encodeHeader packs h into a HeaderSize-byte buffer, little-endian.
// It fails with ErrPathTooLong if sourcePath plus its terminator does
// not fit in the remaining budget.
func encodeHeader(h header) ([]byte, error) {
	budget := HeaderSize - headerFixedSize - 1 // -1 for the terminating zero
	if len(h.sourcePath) > budget {
		return nil, fmt.Errorf("%w: %d bytes, budget %d", ErrPathTooLong, len(h.sourcePath), budget)
	}

	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint64(buf[8:16], h.headerOffset)
	binary.LittleEndian.PutUint64(buf[16:24], h.blockOffset)
	binary.LittleEndian.PutUint64(buf[24:32], h.indexOffset)
	copy(buf[32:], h.sourcePath)
	// buf[32+len(sourcePath)] is already zero (terminator), and the rest
	// of the buffer is zero-filled reserved padding.
	return buf, nil
}

// decodeHeader parses a HeaderSize-byte buffer produced by encodeHeader.
func decodeHeader(buf []byte) (header, error) {
	var h header
	if len(buf) < HeaderSize {
		return h, fmt.Errorf("%w: header truncated (%d bytes)", ErrMalformedArchive, len(buf))
	}
	copy(h.magic[:], buf[0:4])
	if h.magic != Magic {
		return h, fmt.Errorf("%w: got %q", ErrBadMagic, h.magic[:])
	}
	h.version = binary.LittleEndian.Uint32(buf[4:8])
	if h.version != FormatVersion {
		return h, fmt.Errorf("%w: archive version %d, library supports %d", ErrUnsupportedVersion, h.version, FormatVersion)
	}
	h.headerOffset = binary.LittleEndian.Uint64(buf[8:16])
	h.blockOffset = binary.LittleEndian.Uint64(buf[16:24])
	h.indexOffset = binary.LittleEndian.Uint64(buf[24:32])

	rest := buf[32:HeaderSize]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		h.sourcePath = string(rest[:i])
	} else {
		h.sourcePath = string(rest)
	}
	return h, nil
}

// readHeaderAt reads and decodes the header from the start of r.
func readHeaderAt(r io.ReaderAt) (header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return header{}, fmt.Errorf("dam: reading header: %w", err)
	}
	return decodeHeader(buf)
}

// patchHeaderOffsets rewrites the three offset fields of an
// already-written header in place, matching the Creator's step 7
// (seek to byte 8, write header_offset/block_offset/index_offset).
func patchHeaderOffsets(w io.WriterAt, headerOffset, blockOffset, indexOffset uint64) error {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf[0:8], headerOffset)
	binary.LittleEndian.PutUint64(buf[8:16], blockOffset)
	binary.LittleEndian.PutUint64(buf[16:24], indexOffset)
	_, err := w.WriteAt(buf, 8)
	return err
}
