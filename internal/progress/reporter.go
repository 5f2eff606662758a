package progress

import (
	"sync"

	"github.com/smazurov/teres/internal/logging"
)

// DefaultStep is the logging granularity in percent.
const DefaultStep = 10

// UpdateFunc is called with a fresh snapshot whenever the reported percentage
// crosses a step boundary or the total is discovered.
type UpdateFunc func(Snapshot)

// Reporter is a Sink for non-interactive output. It logs one line per step
// instead of one per frame.
type Reporter struct {
	logger   logging.Logger
	step     int
	onUpdate UpdateFunc

	mu         sync.Mutex
	state      State
	lastBucket int
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithStep sets the logging granularity in percent. Values outside 1..100
// are ignored.
func WithStep(percent int) ReporterOption {
	return func(r *Reporter) {
		if percent >= 1 && percent <= 100 {
			r.step = percent
		}
	}
}

// WithUpdateFunc registers a callback for step changes.
func WithUpdateFunc(fn UpdateFunc) ReporterOption {
	return func(r *Reporter) {
		r.onUpdate = fn
	}
}

// NewReporter creates a Reporter that logs to logger.
func NewReporter(logger logging.Logger, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		logger:     logger,
		step:       DefaultStep,
		lastBucket: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetTotal implements Sink.
func (r *Reporter) SetTotal(total uint64) {
	r.mu.Lock()
	r.state.SetTotal(total)
	snap := r.state.Snapshot()
	r.mu.Unlock()

	r.logger.Debug("Discovered frame count", "total", total)
	r.notify(snap)
}

// SetPosition implements Sink.
func (r *Reporter) SetPosition(position uint64) {
	r.mu.Lock()
	r.state.SetPosition(position)
	snap := r.state.Snapshot()

	pct, ok := snap.Percent()
	if !ok {
		r.mu.Unlock()
		return
	}
	bucket := int(pct) / r.step
	if bucket == r.lastBucket {
		r.mu.Unlock()
		return
	}
	r.lastBucket = bucket
	r.mu.Unlock()

	r.logger.Info("Render progress",
		"frame", snap.Position,
		"total", snap.Total,
		"percent", bucket*r.step)
	r.notify(snap)
}

// Snapshot returns the latest values seen by the reporter.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Snapshot()
}

func (r *Reporter) notify(snap Snapshot) {
	if r.onUpdate != nil {
		r.onUpdate(snap)
	}
}
