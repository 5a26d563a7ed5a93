// Command dam_hydrate reconstructs a BAM dataset from a DAM archive and
// an external sequence source (spec.md §6).
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joiningdata/dam"
	"github.com/joiningdata/dam/external"
)

func main() {
	padMissing := flag.Bool("pad", false, "pad missing sequence/quality columns with '*' instead of the literal upstream behavior")
	showProgress := flag.Bool("v", false, "report progress to stderr")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: dam_hydrate IN.dam READS.{bam,sam,tam,fastq,fastq.gz,fastq.bz2} OUT.bam")
		os.Exit(1)
	}

	if *showProgress {
		dam.Progress = dam.StderrProgress
	}

	r := dam.Open(flag.Arg(0))
	defer r.Close()

	rh := &dam.Rehydrator{PadMissing: *padMissing}

	var sam bytes.Buffer
	ctx := context.Background()
	if err := rh.Rehydrate(ctx, r, flag.Arg(1), &sam); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := os.Create(flag.Arg(2))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := external.BAMFromSAM(ctx, &sam, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
