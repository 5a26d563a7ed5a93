// Package samline provides small, dependency-free helpers for splitting
// and rejoining tab-delimited SAM lines: extracting the read id (column
// 0), dropping/restoring the sequence and quality columns (9 and 10),
// and comparing read ids with the trailing-tab delimiter discipline
// spec.md §3 requires (so that id matches are exact, not prefixes).
package samline

import "strings"

// ID returns the read id (column 0) of a tab-delimited SAM line, without
// splitting the whole line.
func ID(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}

// Dessicate removes columns 9 and 10 (sequence, quality) from a
// tab-delimited SAM line, leaving columns 0-8 and 11..N joined by tabs.
// The input line must not include its trailing newline.
func Dessicate(line string) string {
	cols := strings.Split(line, "\t")
	if len(cols) <= 9 {
		return line
	}
	out := make([]string, 0, len(cols)-2)
	out = append(out, cols[:9]...)
	if len(cols) > 11 {
		out = append(out, cols[11:]...)
	}
	return strings.Join(out, "\t")
}

// Reinflate inserts "*" for the sequence and quality columns (9 and 10)
// into a dessicated line, reconstituting well-formed SAM shape.
func Reinflate(line string) string {
	cols := strings.Split(line, "\t")
	if len(cols) < 9 {
		return line
	}
	out := make([]string, 0, len(cols)+2)
	out = append(out, cols[:9]...)
	out = append(out, "*", "*")
	if len(cols) > 9 {
		out = append(out, cols[9:]...)
	}
	return strings.Join(out, "\t")
}

// ReinflateWith inserts seq and qual as columns 9 and 10 of a dessicated
// line.
func ReinflateWith(line, seq, qual string) string {
	cols := strings.Split(line, "\t")
	if len(cols) < 9 {
		return line
	}
	out := make([]string, 0, len(cols)+2)
	out = append(out, cols[:9]...)
	out = append(out, seq, qual)
	if len(cols) > 9 {
		out = append(out, cols[9:]...)
	}
	return strings.Join(out, "\t")
}

// HasIDPrefix reports whether line begins with id followed immediately
// by a tab, i.e. an exact match on the id column rather than a textual
// prefix match.
func HasIDPrefix(line, id string) bool {
	if len(line) <= len(id) {
		return false
	}
	return line[:len(id)] == id && line[len(id)] == '\t'
}

// LessID reports whether a's read id sorts strictly before b's, using
// byte-lexicographic order on "{id}\t" as spec.md §3 requires.
func LessID(a, b string) bool {
	return ID(a)+"\t" < ID(b)+"\t"
}
