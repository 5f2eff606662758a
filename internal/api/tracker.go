package api

import (
	"sync"

	"github.com/smazurov/teres/internal/api/models"
	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/render"
)

// recentLimit bounds how many completed renders the tracker remembers.
const recentLimit = 20

// Tracker follows render lifecycle events and keeps the current render and
// a short history for the status endpoints.
type Tracker struct {
	mu      sync.RWMutex
	current *models.RenderStatus
	recent  []models.RenderStatus
	unsubs  []func()
}

// NewTracker subscribes a tracker to bus.
func NewTracker(bus *events.Bus) *Tracker {
	t := &Tracker{}
	t.unsubs = []func(){
		bus.Subscribe(t.onStarted),
		bus.Subscribe(t.onProgress),
		bus.Subscribe(t.onFinished),
		bus.Subscribe(t.onFailed),
	}
	return t
}

// Close unsubscribes from the bus.
func (t *Tracker) Close() {
	for _, unsub := range t.unsubs {
		unsub()
	}
}

// Snapshot returns copies of the current render and the history.
func (t *Tracker) Snapshot() (*models.RenderStatus, []models.RenderStatus) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var current *models.RenderStatus
	if t.current != nil {
		dup := *t.current
		current = &dup
	}
	return current, append([]models.RenderStatus{}, t.recent...)
}

// Handlers for different event types run independently, so a start may be
// delivered after its render already completed.
func (t *Tracker) onStarted(e events.RenderStartedEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, done := range t.recent {
		if done.RenderID == e.RenderID {
			return
		}
	}
	t.current = &models.RenderStatus{
		RenderID:  e.RenderID,
		VideoPath: e.VideoPath,
		Output:    e.Output,
		State:     models.RenderRunning,
		StartedAt: e.StartedAt,
	}
}

func (t *Tracker) onProgress(e events.RenderProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil || t.current.RenderID != e.RenderID {
		return
	}
	t.current.Frame = e.Frame
	t.current.TotalFrame = e.Total
}

func (t *Tracker) onFinished(e events.RenderFinishedEvent) {
	t.complete(e.RenderID, e.VideoPath, func(s *models.RenderStatus) {
		s.State = models.RenderFinished
		s.Output = e.Output
		s.Elapsed = render.FormatElapsed(e.Elapsed)
	})
}

func (t *Tracker) onFailed(e events.RenderFailedEvent) {
	t.complete(e.RenderID, e.VideoPath, func(s *models.RenderStatus) {
		s.State = models.RenderFailed
		s.ErrorCode = e.Code
		s.Error = e.Error
		s.ExitCode = e.ExitCode
	})
}

// complete moves a render into the history. Failures that happen before
// the pipeline starts have no current entry and are recorded fresh.
func (t *Tracker) complete(id, video string, update func(*models.RenderStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := models.RenderStatus{RenderID: id, VideoPath: video}
	if t.current != nil && t.current.RenderID == id {
		status = *t.current
		t.current = nil
	}
	update(&status)

	t.recent = append([]models.RenderStatus{status}, t.recent...)
	if len(t.recent) > recentLimit {
		t.recent = t.recent[:recentLimit]
	}
}
