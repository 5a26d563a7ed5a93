package dam

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/joiningdata/dam/external"
)

// multiCloser closes several io.Closers in sequence, returning the
// first error encountered.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// externalSeqSource adapts a sortedLineSource of full SAM-shaped lines
// into a seqSource of (id, seq, qual) triples.
type externalSeqSource struct {
	lines   sortedLineSource
	closer  io.Closer
	extract func(string) (seqRecord, bool)
}

func newExternalSeqSource(ctx context.Context, open func() (sortedLineSource, io.Closer, error), extract func(string) (seqRecord, bool)) (*externalSeqSource, error) {
	lines, closer, err := open()
	if err != nil {
		return nil, err
	}
	return &externalSeqSource{lines: lines, closer: closer, extract: extract}, nil
}

func (s *externalSeqSource) next() (seqRecord, bool, error) {
	for {
		line, ok, err := s.lines.Next()
		if err != nil {
			return seqRecord{}, false, err
		}
		if !ok {
			return seqRecord{}, false, nil
		}
		if line == "" {
			continue
		}
		rec, ok := s.extract(line)
		if !ok {
			continue
		}
		return rec, true, nil
	}
}

func (s *externalSeqSource) close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// fastqSeqSource reads a FASTQ file (optionally gzip/bzip2 compressed)
// and sorts its records by read id before yielding them, matching
// spec.md §4.8's synthetic nine-empty-column FASTQ line shape
// conceptually, but produced directly as seqRecords rather than round
// tripping through tab-delimited text.
type fastqSeqSource struct {
	recs []seqRecord
	pos  int
}

func newFASTQSeqSource(path string) (*fastqSeqSource, error) {
	r, err := external.OpenFASTQ(path)
	if err != nil {
		return nil, fmt.Errorf("dam: opening fastq: %w", err)
	}
	defer r.Close()

	var recs []seqRecord
	for {
		rec, ok, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("dam: reading fastq: %w", err)
		}
		if !ok {
			break
		}
		recs = append(recs, seqRecord{id: rec.ID, seq: rec.Seq, qual: rec.Qual})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })
	return &fastqSeqSource{recs: recs}, nil
}

func (s *fastqSeqSource) next() (seqRecord, bool, error) {
	if s.pos >= len(s.recs) {
		return seqRecord{}, false, nil
	}
	rec := s.recs[s.pos]
	s.pos++
	return rec, true, nil
}

func (s *fastqSeqSource) close() error { return nil }
