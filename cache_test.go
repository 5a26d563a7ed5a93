package dam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBlockCacheHitMiss verifies a fresh cache reports a miss, then a
// hit once populated.
func TestBlockCacheHitMiss(t *testing.T) {
	c := newBlockCache(1024)

	_, ok := c.get(0)
	assert.False(t, ok)
	assert.Equal(t, 1, c.misses)

	c.set(0, []string{"abc", "def"})
	lines, ok := c.get(0)
	assert.True(t, ok)
	assert.Equal(t, []string{"abc", "def"}, lines)
	assert.Equal(t, 1, c.hits)
}

// TestBlockCacheEvictsLeastRecentlyUsed verifies eviction removes the
// block untouched the longest once the byte budget is exceeded.
func TestBlockCacheEvictsLeastRecentlyUsed(t *testing.T) {
	line := "0123456789" // 10 bytes
	c := newBlockCache(25)

	c.set(0, []string{line, line}) // 20 bytes, used=20
	c.set(1, []string{line})       // 10 bytes, used=30 > 25, evicts block 0
	_, ok := c.get(0)
	assert.False(t, ok, "block 0 should have been evicted")
	_, ok = c.get(1)
	assert.True(t, ok, "block 1 should remain cached")
}

// TestBlockCachePromotesOnGet verifies a get() refreshes recency so a
// frequently accessed block survives eviction over one that was not
// touched.
func TestBlockCachePromotesOnGet(t *testing.T) {
	line := "0123456789" // 10 bytes
	c := newBlockCache(25)

	c.set(0, []string{line})
	c.set(1, []string{line})
	// touch block 0 so it becomes most-recently-used.
	_, ok := c.get(0)
	assert.True(t, ok)

	c.set(2, []string{line}) // pushes used over budget (0:10 + 1:10 + 2:10 = 30 > 25)

	_, ok = c.get(1)
	assert.False(t, ok, "block 1 should be evicted as the least recently used")
	_, ok = c.get(0)
	assert.True(t, ok, "block 0 should survive because it was recently accessed")
}

// TestBlockCacheNeverEvictsSoleEntry verifies a single oversized block
// is retained rather than evicted into an empty cache.
func TestBlockCacheNeverEvictsSoleEntry(t *testing.T) {
	c := newBlockCache(5)
	big := make([]string, 1)
	big[0] = "this line is definitely longer than five bytes"

	c.set(0, big)
	lines, ok := c.get(0)
	assert.True(t, ok)
	assert.Equal(t, big, lines)
}

// TestNewBlockCacheDefaultsBudget verifies a non-positive budget falls
// back to DefaultCacheBytes.
func TestNewBlockCacheDefaultsBudget(t *testing.T) {
	c := newBlockCache(0)
	assert.Equal(t, DefaultCacheBytes, c.budget)

	c = newBlockCache(-5)
	assert.Equal(t, DefaultCacheBytes, c.budget)
}
