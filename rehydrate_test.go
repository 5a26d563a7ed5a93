package dam

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSeqSource is an in-memory seqSource test double, used so
// Rehydrate's merge logic can be exercised without an external
// alignment toolchain.
type fakeSeqSource struct {
	recs []seqRecord
	pos  int
}

func (s *fakeSeqSource) next() (seqRecord, bool, error) {
	if s.pos >= len(s.recs) {
		return seqRecord{}, false, nil
	}
	rec := s.recs[s.pos]
	s.pos++
	return rec, true, nil
}

func (s *fakeSeqSource) close() error { return nil }

// TestRehydrateExactMerge verifies every archive record with a matching
// sequence-source record is reinflated with the real seq/qual columns.
func TestRehydrateExactMerge(t *testing.T) {
	dir := t.TempDir()
	path := buildTestArchive(t, dir, "r1.dam", "@HD\tVN:1.6\n", [][]string{
		{"read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tMD:Z:4"},
		{"read0050\t0\tchr1\t200\t60\t4M\t*\t0\t0\tMD:Z:4"},
	})
	r := Open(path)
	defer r.Close()

	src := &fakeSeqSource{recs: []seqRecord{
		{id: "read0001", seq: "AAAA", qual: "IIII"},
		{id: "read0050", seq: "CCCC", qual: "JJJJ"},
	}}

	var out bytes.Buffer
	rh := &Rehydrator{}
	require.NoError(t, rh.rehydrateFrom(r, src, &out))

	got := out.String()
	require.Contains(t, got, "read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tAAAA\tIIII\tMD:Z:4")
	require.Contains(t, got, "read0050\t0\tchr1\t200\t60\t4M\t*\t0\t0\tCCCC\tJJJJ\tMD:Z:4")
}

// TestRehydrateMissingSequenceDefaultBehavior verifies that, with
// PadMissing false (the default), an archive record outliving the
// sequence stream is emitted dessicated and unchanged.
func TestRehydrateMissingSequenceDefaultBehavior(t *testing.T) {
	dir := t.TempDir()
	path := buildTestArchive(t, dir, "r2.dam", "@HD\tVN:1.6\n", [][]string{
		{"read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tMD:Z:4"},
	})
	r := Open(path)
	defer r.Close()

	var out bytes.Buffer
	rh := &Rehydrator{PadMissing: false}
	require.NoError(t, rh.rehydrateFrom(r, &fakeSeqSource{}, &out))

	require.Contains(t, out.String(), "read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tMD:Z:4")
}

// TestRehydrateMissingSequencePadMissing verifies that, with PadMissing
// true, an archive record outliving the sequence stream is padded with
// "*" sequence and quality columns instead.
func TestRehydrateMissingSequencePadMissing(t *testing.T) {
	dir := t.TempDir()
	path := buildTestArchive(t, dir, "r3.dam", "@HD\tVN:1.6\n", [][]string{
		{"read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tMD:Z:4"},
	})
	r := Open(path)
	defer r.Close()

	var out bytes.Buffer
	rh := &Rehydrator{PadMissing: true}
	require.NoError(t, rh.rehydrateFrom(r, &fakeSeqSource{}, &out))

	require.Contains(t, out.String(), "read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\t*\t*\tMD:Z:4")
}

// TestRehydrateSkipsUnmatchedSequenceRecords verifies sequence-source
// records with no corresponding archive entry are silently skipped.
func TestRehydrateSkipsUnmatchedSequenceRecords(t *testing.T) {
	dir := t.TempDir()
	path := buildTestArchive(t, dir, "r4.dam", "@HD\tVN:1.6\n", [][]string{
		{"read0050\t0\tchr1\t200\t60\t4M\t*\t0\t0\tMD:Z:4"},
	})
	r := Open(path)
	defer r.Close()

	src := &fakeSeqSource{recs: []seqRecord{
		{id: "read0010", seq: "GGGG", qual: "KKKK"}, // has no archive match
		{id: "read0050", seq: "CCCC", qual: "JJJJ"},
	}}

	var out bytes.Buffer
	rh := &Rehydrator{}
	require.NoError(t, rh.rehydrateFrom(r, src, &out))

	got := out.String()
	require.NotContains(t, got, "read0010")
	require.Contains(t, got, "read0050\t0\tchr1\t200\t60\t4M\t*\t0\t0\tCCCC\tJJJJ\tMD:Z:4")
}
