package dam

// Magic is the 4-byte literal that begins every DAM archive.
var Magic = [4]byte{'D', 'A', 'M', '1'}

// FormatVersion is the version this library reads and writes, expressed
// as version_number*100 on disk (currently 1.01 -> 101).
const FormatVersion = 101

// HeaderSize is the fixed size, in bytes, of the archive header.
const HeaderSize = 512

// BlockSize is the target maximum size, in bytes, of an uncompressed
// block's plaintext. A block may exceed this when a single read id's
// records don't fit (see Creator).
const BlockSize = 1 << 20 // 1,048,576

// Sentinel is the synthetic read id used to terminate the block index.
// It is chosen to sort greater than any printable-ASCII read id.
const Sentinel = "~"

// DefaultCacheBytes is the default byte budget for a Reader's block
// cache: roughly 100 blocks' worth of decompressed data.
var DefaultCacheBytes int64 = 100 * BlockSize

// ProgressFunc reports progress during a long-running operation as a
// percentage in [0.0, 100.0]. A sentinel value of -1.0 indicates the
// operation has finished.
type ProgressFunc func(percent float64)

func nullProgressFunc(percent float64) {}

// Progress is the package-level progress reporter used by Creator and
// Rehydrator when no per-call override is supplied. It defaults to a
// no-op, matching joiningdata-bam's BAMProgressFunc convention.
var Progress ProgressFunc = nullProgressFunc
