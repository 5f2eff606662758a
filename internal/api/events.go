package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/teres/internal/events"
)

// registerSSERoutes registers the render event stream.
func (s *Server) registerSSERoutes() {
	bus := s.options.EventBus

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time render lifecycle and progress events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"render-queued":     events.RenderQueuedEvent{},
		"render-started":    events.RenderStartedEvent{},
		"render-progress":   events.RenderProgressEvent{},
		"render-finished":   events.RenderFinishedEvent{},
		"render-failed":     events.RenderFailedEvent{},
		"settings-reloaded": events.SettingsReloadedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.RenderQueuedEvent](bus, eventCh),
			events.SubscribeToChannel[events.RenderStartedEvent](bus, eventCh),
			events.SubscribeToChannel[events.RenderProgressEvent](bus, eventCh),
			events.SubscribeToChannel[events.RenderFinishedEvent](bus, eventCh),
			events.SubscribeToChannel[events.RenderFailedEvent](bus, eventCh),
			events.SubscribeToChannel[events.SettingsReloadedEvent](bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
