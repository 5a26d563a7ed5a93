package dam

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireSortTool(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sort"); err != nil {
		t.Skip("external sort tool not available on PATH")
	}
}

// TestCreatorCreateFromSAM dessicates a small unsorted SAM fixture into
// an archive and verifies its records come back sorted and dessicated.
func TestCreatorCreateFromSAM(t *testing.T) {
	requireSortTool(t)

	dir := t.TempDir()
	samPath := filepath.Join(dir, "in.sam")
	sam := "@HD\tVN:1.6\tSO:unknown\n" +
		"read0099\t0\tchr1\t300\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
		"read0001\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
		"read0050\t0\tchr1\t200\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	require.NoError(t, os.WriteFile(samPath, []byte(sam), 0o644))

	outPath := filepath.Join(dir, "out.dam")
	c := NewCreator(CreateOptions{TempDirs: []string{dir}})
	require.NoError(t, c.Create(context.Background(), samPath, outPath))

	r := Open(outPath)
	defer r.Close()

	samHeader, err := r.SAMHeader()
	require.NoError(t, err)
	require.Contains(t, string(samHeader), "@HD")

	it, err := r.Iterator(nil, nil)
	require.NoError(t, err)

	var ids []string
	for {
		line, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NotContains(t, line, "ACGT", "dessicated lines must not carry the original sequence")
		ids = append(ids, extractID(line))
	}
	require.Equal(t, []string{"read0001", "read0050", "read0099"}, ids)
}

// TestCreatorUnknownExtension verifies an unsupported source extension
// is rejected before any external tool is invoked.
func TestCreatorUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("irrelevant"), 0o644))

	c := NewCreator(CreateOptions{})
	err := c.Create(context.Background(), srcPath, filepath.Join(dir, "out.dam"))
	require.ErrorIs(t, err, ErrUnknownExtension)
}

// TestSplitSAMHeader verifies leading "@" lines are separated from the
// first record line.
func TestSplitSAMHeader(t *testing.T) {
	in := "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:100\nread1\t0\tchr1\t1\t60\t1M\t*\t0\t0\t*\t*\n"
	headerBytes, body, err := splitSAMHeader(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:100\n", string(headerBytes))

	sc := bufio.NewScanner(body)
	require.True(t, sc.Scan())
	require.Equal(t, "read1\t0\tchr1\t1\t60\t1M\t*\t0\t0\t*\t*", sc.Text())
}
