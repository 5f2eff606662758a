package render

import (
	"slices"
	"sync"

	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/metrics"
)

// Queue holds pending renders in insertion order.
type Queue struct {
	mu    sync.Mutex
	items []*Request
	bus   *events.Bus
}

// NewQueue creates an empty queue. bus may be nil.
func NewQueue(bus *events.Bus) *Queue {
	return &Queue{bus: bus}
}

// Add appends req unless a request for the same video is already queued.
func (q *Queue) Add(req *Request) bool {
	q.mu.Lock()
	for _, existing := range q.items {
		if existing.Equal(req) {
			q.mu.Unlock()
			return false
		}
	}
	q.items = append(q.items, req)
	n := len(q.items)
	q.mu.Unlock()

	metrics.SetQueueLength(n)
	q.bus.Publish(events.RenderQueuedEvent{VideoPath: req.VideoPath, Position: n})
	return true
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a copy of the queued requests.
func (q *Queue) Pending() []*Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Request(nil), q.items...)
}

// Next removes and returns the oldest request. Long-running feeds such as
// a hot folder use it instead of full passes.
func (q *Queue) Next() (*Request, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	req := q.items[0]
	q.items = q.items[1:]
	n := len(q.items)
	q.mu.Unlock()

	metrics.SetQueueLength(n)
	return req, true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
	metrics.SetQueueLength(0)
}

// Discard empties the queue and releases the scratch directory of every
// request except those in keep. The first release error is returned.
func (q *Queue) Discard(keep ...*Request) error {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	metrics.SetQueueLength(0)

	var first error
	for _, req := range items {
		if slices.Contains(keep, req) {
			continue
		}
		if err := req.Discard(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
