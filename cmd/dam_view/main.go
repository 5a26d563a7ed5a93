// Command dam_view prints a DAM archive's SAM header followed by
// dessicated records in an optional [START_ID, END_ID] range
// (spec.md §6), in the flag-driven style of joiningdata-bam's
// cmd/bamshow.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/joiningdata/dam"
)

func main() {
	cacheMB := flag.Int("cachemb", 100, "block cache budget, in megabytes")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 3 {
		fmt.Fprintln(os.Stderr, "usage: dam_view IN.dam [START_ID] [END_ID]")
		os.Exit(1)
	}

	r := dam.Open(flag.Arg(0))
	defer r.Close()

	if err := r.SetCacheBudget(int64(*cacheMB) * 1024 * 1024); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	samHeader, err := r.SAMHeader()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	w.Write(samHeader)

	var start, end *string
	if flag.NArg() >= 2 {
		v := flag.Arg(1)
		start = &v
	}
	if flag.NArg() >= 3 {
		v := flag.Arg(2)
		end = &v
	}

	it, err := r.Iterator(start, end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for {
		line, ok, err := it.Next()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !ok {
			break
		}
		fmt.Fprintln(w, line)
	}
}
