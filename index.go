package dam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// blockIndexEntry pairs a block's first read id with the byte offset,
// relative to the start of the block region, at which that block's
// compressed bytes begin. The final entry is always the Sentinel,
// whose offset marks the end of the block region (spec.md §3).
type blockIndexEntry struct {
	id     string
	offset uint64
}

// blockIndex is the full, in-memory sparse index for an open archive.
// It is strictly ascending by id and terminated by the Sentinel.
type blockIndex []blockIndexEntry

// encodeBlockIndex serializes idx as a zero-terminated-id + uint64-offset
// sequence, ready for bzip2 compression (spec.md §4.3).
func encodeBlockIndex(idx blockIndex) []byte {
	var buf bytes.Buffer
	for _, e := range idx {
		buf.WriteString(e.id)
		buf.WriteByte(0)
		var off [8]byte
		binary.LittleEndian.PutUint64(off[:], e.offset)
		buf.Write(off[:])
	}
	return buf.Bytes()
}

// decodeBlockIndex parses the plaintext payload produced by
// encodeBlockIndex.
func decodeBlockIndex(plaintext []byte) (blockIndex, error) {
	var idx blockIndex
	for len(plaintext) > 0 {
		nul := bytes.IndexByte(plaintext, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: index entry missing terminator", ErrMalformedArchive)
		}
		id := string(plaintext[:nul])
		rest := plaintext[nul+1:]
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: index entry truncated offset", ErrMalformedArchive)
		}
		off := binary.LittleEndian.Uint64(rest[:8])
		idx = append(idx, blockIndexEntry{id: id, offset: off})
		plaintext = rest[8:]
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: empty index (missing sentinel)", ErrMalformedArchive)
	}
	for i := 1; i < len(idx); i++ {
		if !(idx[i-1].id < idx[i].id) {
			return nil, fmt.Errorf("%w: index not strictly ascending at entry %d", ErrMalformedArchive, i)
		}
	}
	if idx[len(idx)-1].id != Sentinel {
		return nil, fmt.Errorf("%w: index missing sentinel terminator", ErrMalformedArchive)
	}
	return idx, nil
}

// loadBlockIndex reads the compressed index, which runs from
// indexOffset to the end of the file as a single bzip2 stream, and
// parses it.
func loadBlockIndex(r io.ReaderAt, indexOffset, fileSize int64) (blockIndex, error) {
	n := fileSize - indexOffset
	if n <= 0 {
		return nil, fmt.Errorf("%w: index region is empty", ErrMalformedArchive)
	}
	compressed := make([]byte, n)
	if _, err := r.ReadAt(compressed, indexOffset); err != nil {
		return nil, fmt.Errorf("dam: reading index: %w", err)
	}
	plaintext, err := decompressBlock(compressed)
	if err != nil {
		return nil, err
	}
	return decodeBlockIndex(plaintext)
}

// locate performs the two-branch binary search of spec.md §4.3: find
// the insertion position of the first entry whose id is > k, then
// return the candidate block position, or (-1, false) if k cannot be
// present in any block.
func (idx blockIndex) locate(k string) (int, bool) {
	pos := sort.Search(len(idx), func(i int) bool {
		return idx[i].id > k
	})
	if pos == 0 {
		return -1, false
	}
	return pos - 1, true
}

// extent returns the [offset, offset+length) byte range, relative to
// the block region, of block position i. i must be < len(idx)-1 (the
// sentinel has no extent of its own).
func (idx blockIndex) extent(i int) (offset int64, length int64) {
	offset = int64(idx[i].offset)
	length = int64(idx[i+1].offset) - offset
	return offset, length
}

// numBlocks is the number of real (non-sentinel) blocks in the index.
func (idx blockIndex) numBlocks() int {
	if len(idx) == 0 {
		return 0
	}
	return len(idx) - 1
}
