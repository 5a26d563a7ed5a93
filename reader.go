package dam

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joiningdata/dam/internal/samline"
)

// Reader is an open DAM archive. A Reader is intended for single
// goroutine use (spec.md §5); open separate Readers to access the same
// file concurrently.
type Reader struct {
	path string

	mu      sync.Mutex
	opened  bool
	openErr error

	f    *os.File
	h    header
	idx  blockIndex
	size int64

	samHeader []byte
	cache     *blockCache

	iterMu  sync.Mutex
	hiddenIt *Iterator
}

// Open returns a Reader for the archive at path. The file is not
// actually opened until the first accessor call (spec.md §4.5/§5 "the
// archive handle is acquired lazily on first access"), so Open itself
// never fails.
func Open(path string) *Reader {
	return &Reader{path: path}
}

// ensureOpen lazily opens the file, loads the header and the block
// index, on first use.
func (r *Reader) ensureOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opened {
		return r.openErr
	}
	r.opened = true

	f, err := os.Open(r.path)
	if err != nil {
		r.openErr = err
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		r.openErr = err
		return err
	}

	h, err := readHeaderAt(f)
	if err != nil {
		f.Close()
		r.openErr = err
		return err
	}

	samHeader := make([]byte, int64(h.blockOffset)-int64(h.headerOffset))
	if _, err := f.ReadAt(samHeader, int64(h.headerOffset)); err != nil {
		f.Close()
		r.openErr = fmt.Errorf("dam: reading SAM header: %w", err)
		return r.openErr
	}

	idx, err := loadBlockIndex(f, int64(h.indexOffset), fi.Size())
	if err != nil {
		f.Close()
		r.openErr = err
		return err
	}

	r.f = f
	r.h = h
	r.size = fi.Size()
	r.samHeader = samHeader
	r.idx = idx
	r.cache = newBlockCache(DefaultCacheBytes)
	return nil
}

// HeaderMagic returns the archive's 4-byte magic.
func (r *Reader) HeaderMagic() ([4]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return [4]byte{}, err
	}
	return r.h.magic, nil
}

// FormatVersion returns the archive's encoded version (version_number*100).
func (r *Reader) FormatVersion() (uint32, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.h.version, nil
}

// HeaderOffset returns the byte offset of the SAM text header.
func (r *Reader) HeaderOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.h.headerOffset, nil
}

// BlockOffset returns the byte offset of the first compressed block.
func (r *Reader) BlockOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.h.blockOffset, nil
}

// IndexOffset returns the byte offset of the compressed index.
func (r *Reader) IndexOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.h.indexOffset, nil
}

// SourcePath returns the absolute path of the original alignment source
// recorded at creation time.
func (r *Reader) SourcePath() (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}
	return r.h.sourcePath, nil
}

// SAMHeader returns the raw bytes of the textual SAM header.
func (r *Reader) SAMHeader() ([]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return r.samHeader, nil
}

// CacheStats returns the cumulative hit and miss counts of the Reader's
// block cache.
func (r *Reader) CacheStats() (hits, misses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return 0, 0
	}
	return r.cache.hits, r.cache.misses
}

// SetCacheBudget overrides the byte budget of the Reader's block cache.
// It replaces the cache with an empty one, discarding any cached blocks
// and resetting the hit/miss counts.
func (r *Reader) SetCacheBudget(budgetBytes int64) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = newBlockCache(budgetBytes)
	return nil
}

// Close releases the Reader's underlying file handle.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// fetchBlock returns the decoded, sorted lines of block position i,
// using and populating the block cache (spec.md §4.4).
func (r *Reader) fetchBlock(i int) ([]string, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if i < 0 || i >= r.idx.numBlocks() {
		return nil, nil
	}
	if lines, ok := r.cache.get(i); ok {
		return lines, nil
	}

	offset, length := r.idx.extent(i)
	if length <= 0 {
		return nil, nil
	}
	compressed := make([]byte, length)
	if _, err := r.f.ReadAt(compressed, int64(r.h.blockOffset)+offset); err != nil {
		return nil, fmt.Errorf("dam: reading block %d: %w", i, err)
	}
	plaintext, err := decompressBlock(compressed)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(plaintext), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	r.cache.set(i, lines)
	return lines, nil
}

// FetchRead returns all dessicated records sharing the given read id,
// with columns 9 and 10 reinflated to "*" (spec.md §4.4). It returns
// ErrNotFound if no record matches.
func (r *Reader) FetchRead(id string) ([]string, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	pos, ok := r.idx.locate(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	lines, err := r.fetchBlock(pos)
	if err != nil {
		return nil, err
	}

	start := sortSearchFirstMatch(lines, id)
	if start < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	var out []string
	for i := start; i < len(lines) && samline.HasIDPrefix(lines[i], id); i++ {
		out = append(out, samline.Reinflate(lines[i]))
	}
	return out, nil
}

// sortSearchFirstMatch binary-searches the sorted lines for the first
// line whose read id exactly equals id, returning -1 if none matches.
func sortSearchFirstMatch(lines []string, id string) int {
	lo, hi := 0, len(lines)
	for lo < hi {
		mid := (lo + hi) / 2
		if samline.LessID(lines[mid], id+"\t") {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(lines) && samline.HasIDPrefix(lines[lo], id) {
		return lo
	}
	return -1
}

// Iterator returns a new Iterator over the archive. A nil start begins
// at the first record; a nil end has no upper bound.
func (r *Reader) Iterator(start, end *string) (*Iterator, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return newIterator(r, start, end)
}

// NextRead is a convenience that owns a hidden Iterator over [start,
// end], advancing it on each call and resetting automatically once
// exhausted so the next call begins a fresh pass.
func (r *Reader) NextRead(start, end *string) (string, bool, error) {
	r.iterMu.Lock()
	defer r.iterMu.Unlock()

	if r.hiddenIt == nil {
		it, err := r.Iterator(start, end)
		if err != nil {
			return "", false, err
		}
		r.hiddenIt = it
	}
	line, ok, err := r.hiddenIt.Next()
	if err != nil {
		return "", false, err
	}
	if !ok {
		r.hiddenIt = nil
		return "", false, nil
	}
	return line, true, nil
}
