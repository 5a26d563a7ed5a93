package dam

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// compressBlock bzip2-compresses plaintext as a single, self-contained
// bzip2 stream, with no additional framing (spec.md §4.2).
func compressBlock(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		return nil, fmt.Errorf("dam: creating bzip2 writer: %w", err)
	}
	if _, err := zw.Write(plaintext); err != nil {
		zw.Close()
		return nil, fmt.Errorf("dam: bzip2 compressing block: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("dam: closing bzip2 writer: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressBlock decompresses a single bzip2 stream written by
// compressBlock.
func decompressBlock(compressed []byte) ([]byte, error) {
	zr, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2 header: %v", ErrMalformedArchive, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2 stream: %v", ErrMalformedArchive, err)
	}
	return out, nil
}
