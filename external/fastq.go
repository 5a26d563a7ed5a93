package external

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// FASTQRecord is one parsed 4-line FASTQ record.
type FASTQRecord struct {
	ID   string
	Seq  string
	Qual string
}

// FASTQReader streams FASTQRecords from a .fastq, .fastq.gz, or
// .fastq.bz2 file. Per the design notes in spec.md §9, decompression is
// done in-process (compress/gzip for .gz, following the teacher's own
// compress/gzip usage in bam.go; dsnet/compress/bzip2 for .bz2) rather
// than shelling out to gunzip/bunzip2.
type FASTQReader struct {
	f   *os.File
	zc  io.Closer
	br  *bufio.Reader
}

// OpenFASTQ opens name, selecting a decompressor by its extension.
func OpenFASTQ(name string) (*FASTQReader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fr := &FASTQReader{f: f}
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("external: opening gzip fastq: %w", err)
		}
		fr.zc = gz
		fr.br = bufio.NewReader(gz)
	case strings.HasSuffix(name, ".bz2"):
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("external: opening bzip2 fastq: %w", err)
		}
		fr.zc = bz
		fr.br = bufio.NewReader(bz)
	default:
		fr.br = bufio.NewReader(f)
	}
	return fr, nil
}

// Next returns the next FASTQ record, or ok=false at end of stream.
// The read id is taken as the first whitespace-delimited token of the
// '@'-prefixed id line, with the leading '@' stripped.
func (fr *FASTQReader) Next() (FASTQRecord, bool, error) {
	idLine, err := fr.readLine()
	if err != nil {
		return FASTQRecord{}, false, err
	}
	if idLine == "" {
		return FASTQRecord{}, false, nil
	}
	seq, err := fr.readLine()
	if err != nil {
		return FASTQRecord{}, false, err
	}
	plus, err := fr.readLine()
	if err != nil {
		return FASTQRecord{}, false, err
	}
	qual, err := fr.readLine()
	if err != nil {
		return FASTQRecord{}, false, err
	}
	if !strings.HasPrefix(idLine, "@") || !strings.HasPrefix(plus, "+") {
		return FASTQRecord{}, false, fmt.Errorf("external: malformed fastq record near %q", idLine)
	}
	id := strings.TrimPrefix(idLine, "@")
	if i := strings.IndexAny(id, " \t"); i >= 0 {
		id = id[:i]
	}
	return FASTQRecord{ID: id, Seq: seq, Qual: qual}, true, nil
}

func (fr *FASTQReader) readLine() (string, error) {
	line, err := fr.br.ReadString('\n')
	if err == io.EOF {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close releases the FASTQReader's underlying resources.
func (fr *FASTQReader) Close() error {
	var err error
	if fr.zc != nil {
		err = fr.zc.Close()
	}
	if cerr := fr.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
