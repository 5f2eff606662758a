// Package process runs the two-stage frame server to transcoder pipeline.
//
// The source stage writes raw frames to its stdout, which is an OS pipe
// read directly by the transcoder as its stdin; no frame data passes
// through this process. Both stages' diagnostic streams are drained
// concurrently with waiting on them, so neither side can stall on a full
// stderr buffer.
//
// When stderr is not a terminal, the source's diagnostics are scanned for
// progress markers. On a terminal they are inherited so the frame server
// draws its own progress line.
//
// Cancelling the context sends SIGINT to both stages and kills whatever is
// still running after the graceful timeout:
//
//	p := process.NewPipeline(logging.GetLogger("process"))
//	outcome, err := p.Run(ctx, stages, progress.Discard)
//	if err != nil {
//		return err // launch failure
//	}
//	if err := outcome.Err(); err != nil {
//		return err // first failing stage
//	}
package process
