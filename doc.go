// Package dam implements the DAM ("dessicated BAM") archive format: a
// compact container that stores the mapping-and-annotation portion of a
// read-alignment dataset, omitting the per-read sequence and quality
// columns, which can later be recombined with any file that still
// carries them.
//
// A DAM file is created from a SAM- or BAM-formatted alignment source
// with a Creator, queried by read id with a Reader, and merged back into
// a full SAM/BAM dataset with a Rehydrator.
package dam
