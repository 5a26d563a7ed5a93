package samline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fullLine = "read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\tMD:Z:4"
const dessicatedLine = "read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tMD:Z:4"

// TestID verifies the read id is the first tab-delimited column.
func TestID(t *testing.T) {
	assert.Equal(t, "read1", ID(fullLine))
	assert.Equal(t, "noTabsHere", ID("noTabsHere"))
}

// TestDessicate verifies columns 9 and 10 are removed.
func TestDessicate(t *testing.T) {
	assert.Equal(t, dessicatedLine, Dessicate(fullLine))
}

// TestDessicateShortLine verifies a line without seq/qual columns
// passes through unchanged.
func TestDessicateShortLine(t *testing.T) {
	short := "read1\t0\tchr1"
	assert.Equal(t, short, Dessicate(short))
}

// TestReinflate verifies "*" placeholders are inserted at columns 9 and 10.
func TestReinflate(t *testing.T) {
	want := "read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\t*\t*\tMD:Z:4"
	assert.Equal(t, want, Reinflate(dessicatedLine))
}

// TestReinflateWith verifies supplied seq/qual values are inserted at
// columns 9 and 10.
func TestReinflateWith(t *testing.T) {
	want := "read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\tMD:Z:4"
	assert.Equal(t, want, ReinflateWith(dessicatedLine, "ACGT", "IIII"))
}

// TestDessicateReinflateRoundTrip verifies ReinflateWith(Dessicate(x),
// seq, qual) reproduces the original line exactly.
func TestDessicateReinflateRoundTrip(t *testing.T) {
	got := ReinflateWith(Dessicate(fullLine), "ACGT", "IIII")
	assert.Equal(t, fullLine, got)
}

// TestHasIDPrefix verifies exact id matches, not textual prefixes.
func TestHasIDPrefix(t *testing.T) {
	assert.True(t, HasIDPrefix(fullLine, "read1"))
	assert.False(t, HasIDPrefix(fullLine, "read"))
	assert.False(t, HasIDPrefix(fullLine, "read12"))
	assert.False(t, HasIDPrefix("read1", "read1")) // no trailing tab at all
}

// TestLessID verifies ordering is by read id, not the whole line.
func TestLessID(t *testing.T) {
	a := "read0001\t0\tchr1\t1\t60\t1M\t*\t0\t0\t*\t*"
	b := "read0002\t0\tchr2\t1\t60\t1M\t*\t0\t0\t*\t*"
	assert.True(t, LessID(a, b))
	assert.False(t, LessID(b, a))
	assert.False(t, LessID(a, a))
}
