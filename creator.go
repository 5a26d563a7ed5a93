package dam

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joiningdata/dam/external"
	"github.com/joiningdata/dam/internal/samline"
)

// CreateOptions configures a Creator. The zero value is a usable
// default (no temp directory hints).
type CreateOptions struct {
	// TempDirs are passed as "-T" hints to the external sort.
	TempDirs []string

	// Progress, if non-nil, overrides the package-level Progress
	// reporter for this Create call.
	Progress ProgressFunc
}

// Creator implements the dessication pipeline of spec.md §4.7: stream a
// read-name-sorted alignment source into size-bounded blocks, maintain
// the one-block-per-read-id-group invariant, build the index, and patch
// the header.
type Creator struct {
	opts CreateOptions
}

// NewCreator returns a Creator configured with opts.
func NewCreator(opts CreateOptions) *Creator {
	return &Creator{opts: opts}
}

// Create dessicates the alignment source at srcPath (a .bam, .sam, or
// .tam file) into a new archive at outPath.
func (c *Creator) Create(ctx context.Context, srcPath, outPath string) error {
	progress := c.opts.Progress
	if progress == nil {
		progress = Progress
	}

	absSrc, err := filepath.Abs(srcPath)
	if err != nil {
		return fmt.Errorf("dam: resolving source path: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("dam: creating archive: %w", err)
	}
	defer out.Close()
	progress(0.0)

	// Step 1: emit preliminary header.
	prelim := header{
		version:      FormatVersion,
		headerOffset: HeaderSize,
		blockOffset:  0,
		indexOffset:  0,
		sourcePath:   absSrc,
	}
	buf, err := encodeHeader(prelim)
	if err != nil {
		return err
	}
	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("dam: writing preliminary header: %w", err)
	}

	// Step 2 & 3: transcribe the SAM header and open the sorted record
	// stream.
	headerBytes, sortedLines, cleanup, err := openSource(ctx, srcPath, c.opts.TempDirs)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := out.Write(headerBytes); err != nil {
		return fmt.Errorf("dam: writing SAM header: %w", err)
	}
	blockOffset := uint64(HeaderSize) + uint64(len(headerBytes))

	// Step 4: block packing loop.
	var blockBuf strings.Builder
	var blockFirstID string
	haveBlockFirstID := false
	var idxBuf blockIndex
	var outputOffset uint64

	flush := func() error {
		if blockBuf.Len() == 0 {
			return nil
		}
		compressed, err := compressBlock([]byte(blockBuf.String()))
		if err != nil {
			return err
		}
		idxBuf = append(idxBuf, blockIndexEntry{id: blockFirstID, offset: outputOffset})
		if _, err := out.Write(compressed); err != nil {
			return fmt.Errorf("dam: writing block: %w", err)
		}
		outputOffset += uint64(len(compressed))
		blockBuf.Reset()
		haveBlockFirstID = false
		return nil
	}

	var totalLines int64
	for {
		line, ok, err := sortedLines.Next()
		if err != nil {
			return fmt.Errorf("dam: reading sorted records: %w", err)
		}
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		totalLines++

		id := samline.ID(line)
		dessicated := samline.Dessicate(line)

		if !haveBlockFirstID {
			blockFirstID = id
			haveBlockFirstID = true
		} else if id != blockFirstID && blockBuf.Len()+len(dessicated)+1 > BlockSize {
			if err := flush(); err != nil {
				return err
			}
			blockFirstID = id
			haveBlockFirstID = true
		}
		blockBuf.WriteString(dessicated)
		blockBuf.WriteByte('\n')
	}

	// Step 5: flush final block and append sentinel.
	if err := flush(); err != nil {
		return err
	}
	idxBuf = append(idxBuf, blockIndexEntry{id: Sentinel, offset: outputOffset})

	// Step 6: write index.
	indexOffset := blockOffset + outputOffset
	compressedIdx, err := compressBlock(encodeBlockIndex(idxBuf))
	if err != nil {
		return err
	}
	if _, err := out.Write(compressedIdx); err != nil {
		return fmt.Errorf("dam: writing index: %w", err)
	}

	// Step 7: patch header.
	if err := patchHeaderOffsets(out, HeaderSize, blockOffset, indexOffset); err != nil {
		return fmt.Errorf("dam: patching header: %w", err)
	}

	progress(-1.0)
	return nil
}

// sortedLineSource is satisfied by external.LineReader (and by in-memory
// test doubles).
type sortedLineSource interface {
	Next() (string, bool, error)
}

// openSource opens srcPath (.bam, .sam, or .tam), returning the raw SAM
// header bytes and a sorted-by-read-id stream of record lines, per
// spec.md §4.7 steps 2-3. The returned cleanup func must be called once
// the stream has been fully consumed (or on early error) to release
// child processes and temp readers.
func openSource(ctx context.Context, srcPath string, tmpDirs []string) ([]byte, sortedLineSource, func(), error) {
	switch ext := strings.ToLower(filepath.Ext(srcPath)); ext {
	case ".bam":
		p, err := external.SAMHeaderAndRecords(ctx, srcPath)
		if err != nil {
			return nil, nil, func() {}, fmt.Errorf("%w: %v", ErrExternalTool, err)
		}
		headerBytes, bodyReader, err := splitSAMHeader(p)
		if err != nil {
			p.Close()
			return nil, nil, func() {}, err
		}
		sorted, err := external.SortByReadName(ctx, bodyReader, tmpDirs)
		if err != nil {
			p.Close()
			return nil, nil, func() {}, fmt.Errorf("%w: %v", ErrExternalTool, err)
		}
		lr := external.NewLineReader(sorted)
		return headerBytes, lr, func() { lr.Close(); p.Close() }, nil

	case ".sam", ".tam":
		f, err := os.Open(srcPath)
		if err != nil {
			return nil, nil, func() {}, fmt.Errorf("dam: opening source: %w", err)
		}
		headerBytes, bodyReader, err := splitSAMHeader(f)
		if err != nil {
			f.Close()
			return nil, nil, func() {}, err
		}
		sorted, err := external.SortByReadName(ctx, bodyReader, tmpDirs)
		if err != nil {
			f.Close()
			return nil, nil, func() {}, fmt.Errorf("%w: %v", ErrExternalTool, err)
		}
		lr := external.NewLineReader(sorted)
		return headerBytes, lr, func() { lr.Close(); f.Close() }, nil

	default:
		return nil, nil, func() {}, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}
}

// splitSAMHeader consumes leading "@"-prefixed lines from r, returning
// their raw bytes (newline-terminated, verbatim) and an io.Reader that
// continues with the first non-header line.
func splitSAMHeader(r io.Reader) ([]byte, io.Reader, error) {
	br := bufio.NewReader(r)
	var header strings.Builder
	for {
		peek, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("dam: reading header: %w", err)
		}
		if peek[0] != '@' {
			break
		}
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("dam: reading header line: %w", err)
		}
		header.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			header.WriteByte('\n')
		}
	}
	return []byte(header.String()), br, nil
}
