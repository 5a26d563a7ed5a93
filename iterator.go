package dam

import "github.com/joiningdata/dam/internal/samline"

// Iterator provides forward-only traversal over an inclusive read-id
// range of an archive (spec.md §4.6). Its state is the explicit
// (blockIndex, lineIndex, cachedLines, endID) tuple spec.md calls for,
// matching the stateful-iterator shape of Schaudge-hts/bam/reader.go's
// Iterator, generalized from BGZF chunk advancement to DAM block
// advancement.
//
// Lines returned by Next are the archive's dessicated form (columns 9
// and 10 absent); they are not star-reinflated the way FetchRead's
// results are. This asymmetry is deliberate (spec.md §4.6).
type Iterator struct {
	r *Reader

	blockIndex int
	lineIndex  int
	cached     []string

	endID *string

	started bool
	done    bool
}

// newIterator constructs an Iterator positioned at the first line with
// id >= *start (or at the very first line, if start is nil).
func newIterator(r *Reader, start, end *string) (*Iterator, error) {
	it := &Iterator{r: r, endID: end}

	if start == nil {
		return it, nil
	}

	pos, ok := r.idx.locate(*start)
	if !ok {
		// start sorts before the first block's first id, so every line
		// is >= start: begin at the very first line.
		return it, nil
	}
	lines, err := r.fetchBlock(pos)
	if err != nil {
		return nil, err
	}
	li := firstGEIndex(lines, *start)
	if li < 0 {
		// start falls after every line in this block; resume scanning
		// from the next block. Next() pre-increments blockIndex when
		// cached is nil, so this must be pos, not pos+1.
		it.blockIndex = pos
		it.lineIndex = 0
		it.cached = nil
		it.started = true
		return it, nil
	}
	it.blockIndex = pos
	it.lineIndex = li
	it.cached = lines
	it.started = true
	return it, nil
}

// firstGEIndex returns the index of the first line whose read id is
// lexicographically >= start, or -1 if none exists.
func firstGEIndex(lines []string, start string) int {
	lo, hi := 0, len(lines)
	for lo < hi {
		mid := (lo + hi) / 2
		if samline.LessID(lines[mid], start) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(lines) {
		return lo
	}
	return -1
}

// Next returns the next line in increasing block/line order. ok is
// false once iteration has ended (end of archive, or the end-id bound
// was exceeded); err is non-nil only on an I/O or decode failure.
func (it *Iterator) Next() (string, bool, error) {
	if it.done {
		return "", false, nil
	}
	if !it.started {
		lines, err := it.r.fetchBlock(0)
		if err != nil {
			return "", false, err
		}
		it.cached = lines
		it.started = true
	}

	for {
		if it.cached == nil || it.lineIndex >= len(it.cached) {
			it.blockIndex++
			if it.blockIndex >= it.r.idx.numBlocks() {
				it.done = true
				return "", false, nil
			}
			lines, err := it.r.fetchBlock(it.blockIndex)
			if err != nil {
				return "", false, err
			}
			if len(lines) == 0 {
				it.done = true
				return "", false, nil
			}
			it.cached = lines
			it.lineIndex = 0
			continue
		}

		line := it.cached[it.lineIndex]
		if it.endID != nil && samline.LessID(*it.endID, line) {
			it.done = true
			return "", false, nil
		}
		it.lineIndex++
		return line, true, nil
	}
}

// Reset restarts iteration from the beginning of the archive, with no
// start or end bound.
func (it *Iterator) Reset() {
	it.blockIndex = 0
	it.lineIndex = 0
	it.cached = nil
	it.endID = nil
	it.started = false
	it.done = false
}

// Close releases any resources held by the Iterator. The Iterator does
// not own the underlying Reader, so Close is a no-op today; it exists
// so callers can treat Iterator like other scope-bounded resources.
func (it *Iterator) Close() error { return nil }
