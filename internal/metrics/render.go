// Package metrics provides Prometheus metrics for renders.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every teres metric. It is separate from the default
// registry so textfile exports contain only render state.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	renderFrame = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "teres",
		Subsystem: "render",
		Name:      "frame",
		Help:      "Last frame reported by the frame server",
	}, []string{"video"})

	renderFramesTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "teres",
		Subsystem: "render",
		Name:      "frames",
		Help:      "Total frames the frame server will produce",
	}, []string{"video"})

	rendersTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teres",
		Name:      "renders_total",
		Help:      "Completed renders by result",
	}, []string{"result"})

	renderDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "teres",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of successful renders",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	queueLength = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "teres",
		Name:      "queue_length",
		Help:      "Renders waiting in the queue",
	})
)

// Result labels for ObserveRender.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// SetFrame sets the current frame for a video.
func SetFrame(video string, frame uint64) {
	renderFrame.WithLabelValues(video).Set(float64(frame))
}

// SetTotalFrames sets the frame count for a video.
func SetTotalFrames(video string, total uint64) {
	renderFramesTotal.WithLabelValues(video).Set(float64(total))
}

// DeleteRender removes the per-video series.
func DeleteRender(video string) {
	renderFrame.DeleteLabelValues(video)
	renderFramesTotal.DeleteLabelValues(video)
}

// ObserveRender counts a finished render. Durations are recorded for
// successes only.
func ObserveRender(result string, elapsed time.Duration) {
	rendersTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		renderDuration.Observe(elapsed.Seconds())
	}
}

// SetQueueLength sets the number of pending renders.
func SetQueueLength(n int) {
	queueLength.Set(float64(n))
}

// ProgressSink adapts the per-video gauges to a progress sink.
type ProgressSink struct {
	Video string
}

// SetTotal records the frame count.
func (s ProgressSink) SetTotal(total uint64) { SetTotalFrames(s.Video, total) }

// SetPosition records the current frame.
func (s ProgressSink) SetPosition(position uint64) { SetFrame(s.Video, position) }
