// Package external wraps the out-of-process collaborators named in
// spec.md §1/§6: an alignment toolchain capable of converting between
// SAM and BAM, an external sort honoring "-k1,1" and temporary
// directory hints, and compressed-FASTQ decompression. Child processes
// are connected through exec.Cmd stdin/stdout pipes and awaited at
// Close, following the
// os/exec pipeline idiom used in
// holocm-holo-build/src/holo-build/common/tar.go and
// holocm-holo-build/src/dump-package/impl/core.go.
package external

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// AlignmentTool is the name of the external alignment toolchain
// executable on PATH (e.g. "samtools"). It is a package variable, in
// the style of joiningdata-bam's exported MaxBAMMemory, so callers can
// override it without plumbing an option through every call.
var AlignmentTool = "samtools"

// SortTool is the name of the external sort executable on PATH.
var SortTool = "sort"

// Pipeline is a running child process whose stdout is exposed as an
// io.ReadCloser. Close waits for the process to exit and surfaces a
// nonzero exit status as an error wrapping dam's ErrExternalTool shape
// (returned as a plain *exec.ExitError-wrapping error here; callers in
// package dam convert it to dam.ErrExternalTool).
type Pipeline struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Read implements io.Reader by reading the child process's stdout.
func (p *Pipeline) Read(b []byte) (int, error) { return p.stdout.Read(b) }

// Close waits for the child process to exit and returns an error if it
// exited with a nonzero status or failed to start.
func (p *Pipeline) Close() error {
	p.stdout.Close()
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("external: %s: %w", p.cmd.Path, err)
	}
	return nil
}

// start launches argv[0] with the remaining args, wiring its stdout to
// the returned Pipeline. stdin, if non-nil, is connected to the child's
// stdin. extraEnv, if non-empty, is appended to the ambient environment
// (letting a caller override locale-sensitive variables such as
// LC_ALL).
func start(ctx context.Context, stdin io.Reader, extraEnv []string, argv ...string) (*Pipeline, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("external: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("external: %s: %w", argv[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("external: starting %s: %w", argv[0], err)
	}
	return &Pipeline{cmd: cmd, stdout: stdout}, nil
}

// SAMHeaderAndRecords streams a BAM file as SAM text: a header (lines
// beginning with "@") followed by alignment records, via the
// AlignmentTool's "view -h" mode (spec.md §4.7 step 2/3).
func SAMHeaderAndRecords(ctx context.Context, bamPath string) (*Pipeline, error) {
	return start(ctx, nil, nil, AlignmentTool, "view", "-h", bamPath)
}

// BAMFromSAM pipes SAM text (read from r) into the AlignmentTool's
// "view -bS -" mode, writing BAM bytes to w (spec.md §4.8's "piped to
// an external view -bS converter").
func BAMFromSAM(ctx context.Context, r io.Reader, w io.Writer) error {
	p, err := start(ctx, r, nil, AlignmentTool, "view", "-bS", "-")
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, p); err != nil {
		p.Close()
		return fmt.Errorf("external: copying BAM output: %w", err)
	}
	return p.Close()
}

// SortByReadName pipes r through the external sort, keyed on column 1
// (tab-separated, "-k1,1"), honoring the supplied temporary directory
// hints (spec.md §4.7 step 3). The sort runs under LC_ALL=C so its
// ordering is strict byte-lexicographic, matching the archive's own
// comparison (internal/samline.LessID) regardless of the ambient
// locale.
func SortByReadName(ctx context.Context, r io.Reader, tmpDirs []string) (*Pipeline, error) {
	argv := []string{SortTool, "-k1,1", "-t", "\t"}
	for _, d := range tmpDirs {
		argv = append(argv, "-T", d)
	}
	return start(ctx, r, []string{"LC_ALL=C"}, argv...)
}

// LineReader wraps a Pipeline (or any io.Reader) for convenient
// line-at-a-time consumption, as used by the Creator and Rehydrator's
// streaming loops.
type LineReader struct {
	closer io.Closer
	sc     *bufio.Scanner
}

// NewLineReader wraps r (which may be nil-closer, e.g. a bytes.Reader)
// for line-at-a-time reads.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	closer, _ := r.(io.Closer)
	return &LineReader{closer: closer, sc: sc}
}

// Next returns the next line (without its trailing newline), or ok=false
// at end of stream.
func (lr *LineReader) Next() (string, bool, error) {
	if lr.sc.Scan() {
		return lr.sc.Text(), true, nil
	}
	if err := lr.sc.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// Close closes the underlying reader if it is an io.Closer.
func (lr *LineReader) Close() error {
	if lr.closer != nil {
		return lr.closer.Close()
	}
	return nil
}
