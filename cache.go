package dam

import "container/list"

// blockCacheEntry is the payload stored in a blockCache: the decoded,
// newline-split, sorted lines of one block, plus their total byte size
// so eviction can account for the cache's byte budget.
type blockCacheEntry struct {
	pos   int
	lines []string
	size  int64
}

// blockCache is a byte-budgeted LRU keyed by block position, valued by
// a block's decoded, sorted line list (spec.md §4.4). It generalizes
// joiningdata-bam/caches.go's blockLRUCache: same container/list + map
// shape, but a single LRU list with byte-budget eviction in place of
// that cache's four-segment S4-LRU queues, matching the single
// byte-budget policy spec.md calls for.
type blockCache struct {
	budget int64
	used   int64

	ll   *list.List // front = most recently used
	data map[int]*list.Element

	hits, misses int
}

func newBlockCache(budgetBytes int64) *blockCache {
	if budgetBytes <= 0 {
		budgetBytes = DefaultCacheBytes
	}
	return &blockCache{
		budget: budgetBytes,
		ll:     list.New(),
		data:   make(map[int]*list.Element),
	}
}

// get returns the cached lines for block position i, promoting it to
// most-recently-used on a hit.
func (c *blockCache) get(i int) ([]string, bool) {
	el, ok := c.data[i]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.ll.MoveToFront(el)
	return el.Value.(*blockCacheEntry).lines, true
}

// set inserts or replaces the cached lines for block position i,
// evicting least-recently-used entries until the cache is back within
// its byte budget.
func (c *blockCache) set(i int, lines []string) {
	size := linesSize(lines)
	if el, ok := c.data[i]; ok {
		c.used -= el.Value.(*blockCacheEntry).size
		el.Value = &blockCacheEntry{pos: i, lines: lines, size: size}
		c.used += size
		c.ll.MoveToFront(el)
	} else {
		el := c.ll.PushFront(&blockCacheEntry{pos: i, lines: lines, size: size})
		c.data[i] = el
		c.used += size
	}
	for c.used > c.budget {
		back := c.ll.Back()
		if back == nil {
			break
		}
		entry := back.Value.(*blockCacheEntry)
		if back == c.data[i] && len(c.data) == 1 {
			// don't evict the only entry we just inserted
			break
		}
		c.ll.Remove(back)
		delete(c.data, entry.pos)
		c.used -= entry.size
	}
}

func linesSize(lines []string) int64 {
	var n int64
	for _, l := range lines {
		n += int64(len(l))
	}
	return n
}
