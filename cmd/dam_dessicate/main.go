// Command dam_dessicate creates a DAM archive from a SAM- or
// BAM-formatted alignment source (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joiningdata/dam"
)

// tmpDirFlag collects repeated "-tmpdir" flags, matching the teacher's
// plain flag.Var idiom for multi-value flags rather than pulling in a
// CLI framework.
type tmpDirFlag []string

func (t *tmpDirFlag) String() string { return strings.Join(*t, ",") }
func (t *tmpDirFlag) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	var tmpDirs tmpDirFlag
	flag.Var(&tmpDirs, "tmpdir", "temporary directory hint for the external sort (may be repeated)")
	showProgress := flag.Bool("v", false, "report progress to stderr")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: dam_dessicate [--tmpdir DIR]... IN.{bam,sam,tam} OUT.dam")
		os.Exit(1)
	}

	if *showProgress {
		dam.Progress = dam.StderrProgress
	}

	c := dam.NewCreator(dam.CreateOptions{TempDirs: []string(tmpDirs)})
	if err := c.Create(context.Background(), flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
