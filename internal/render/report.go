package render

import (
	"fmt"
	"io"

	"github.com/smazurov/teres/internal/logging"
)

// ReportLines is how many lines per stage a failure report shows.
const ReportLines = 20

// Log modules the pipeline stages write to.
const (
	SourceModule     = "vspipe"
	TranscoderModule = "ffmpeg"
)

// WriteFailureReport prints err followed by the last n buffered lines of
// each stage's output. Stages that logged nothing are skipped.
func WriteFailureReport(w io.Writer, buf *logging.RingBuffer, err error, n int) {
	fmt.Fprintf(w, "Render failed: %v\n", err)
	if buf == nil {
		return
	}
	for _, module := range []string{SourceModule, TranscoderModule} {
		entries := buf.Tail(module, n)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nLast %s output:\n", module)
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\n", logging.FormatLogLine(e))
		}
	}
}
