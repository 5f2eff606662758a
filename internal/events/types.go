package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeRenderQueued uint32 = iota + 1
	TypeRenderStarted
	TypeRenderProgress
	TypeRenderFinished
	TypeRenderFailed
	TypeSettingsReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// RenderQueuedEvent is published when a video is added to the queue.
type RenderQueuedEvent struct {
	VideoPath string
	Position  int
}

// Type returns the event type identifier for RenderQueuedEvent.
func (e RenderQueuedEvent) Type() uint32 { return TypeRenderQueued }

// RenderStartedEvent is published just before the pipeline is spawned.
type RenderStartedEvent struct {
	RenderID  string
	VideoPath string
	Output    string
	StartedAt time.Time
}

// Type returns the event type identifier for RenderStartedEvent.
func (e RenderStartedEvent) Type() uint32 { return TypeRenderStarted }

// RenderProgressEvent carries frame progress. Total is zero until known.
type RenderProgressEvent struct {
	RenderID string
	Frame    uint64
	Total    uint64
}

// Type returns the event type identifier for RenderProgressEvent.
func (e RenderProgressEvent) Type() uint32 { return TypeRenderProgress }

// RenderFinishedEvent is published after a successful render and cleanup.
type RenderFinishedEvent struct {
	RenderID  string
	VideoPath string
	Output    string
	Elapsed   time.Duration
}

// Type returns the event type identifier for RenderFinishedEvent.
func (e RenderFinishedEvent) Type() uint32 { return TypeRenderFinished }

// RenderFailedEvent is published when a render cannot complete.
type RenderFailedEvent struct {
	RenderID  string
	VideoPath string
	Code      string
	Error     string
	ExitCode  int
}

// Type returns the event type identifier for RenderFailedEvent.
func (e RenderFailedEvent) Type() uint32 { return TypeRenderFailed }

// SettingsReloadedEvent is published when the settings file changes.
type SettingsReloadedEvent struct {
	Path string
}

// Type returns the event type identifier for SettingsReloadedEvent.
func (e SettingsReloadedEvent) Type() uint32 { return TypeSettingsReloaded }
