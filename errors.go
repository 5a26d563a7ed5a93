package dam

import "errors"

// Sentinel errors identifying the error taxonomy of spec.md §7. Use
// errors.Is to test for these; concrete errors returned by this package
// wrap one of these with additional context via fmt.Errorf("...: %w").
var (
	// ErrBadMagic is returned when an archive's first four bytes are not
	// the DAM magic.
	ErrBadMagic = errors.New("dam: bad magic")

	// ErrUnsupportedVersion is returned when an archive's header version
	// does not match FormatVersion.
	ErrUnsupportedVersion = errors.New("dam: unsupported version")

	// ErrPathTooLong is returned when a source path does not fit in the
	// header's remaining byte budget.
	ErrPathTooLong = errors.New("dam: source path too long")

	// ErrNotFound is returned by FetchRead when no record matches the
	// requested read id.
	ErrNotFound = errors.New("dam: read id not found")

	// ErrExternalTool is returned when a spawned child process (alignment
	// toolchain, sort, decompressor) exits with a nonzero status or
	// cannot be started.
	ErrExternalTool = errors.New("dam: external tool failed")

	// ErrMalformedArchive is returned when the block index or a block
	// cannot be parsed (truncated data, bad bzip2 stream, out-of-order
	// index entries).
	ErrMalformedArchive = errors.New("dam: malformed archive")

	// ErrUnknownExtension is returned by Rehydrate when the sequence
	// source file's extension is not one of the recognized kinds, and by
	// Creator.Create when the alignment source is not .bam, .sam or .tam.
	ErrUnknownExtension = errors.New("dam: unrecognized sequence source extension")
)
