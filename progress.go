package dam

import (
	"fmt"
	"os"
)

// StderrProgress is a ProgressFunc that reports progress to os.Stderr,
// mirroring joiningdata-bam's StderrProgressFunc.
func StderrProgress(percent float64) {
	if percent < 0.0 {
		fmt.Fprintf(os.Stderr, "\r Done   \n")
		return
	}
	fmt.Fprintf(os.Stderr, "\r%7.2f%%", percent)
	os.Stderr.Sync()
}
