package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/teres/internal/api/models"
)

func (s *Server) registerRenderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-queue",
		Method:      http.MethodGet,
		Path:        "/api/queue",
		Summary:     "Queue",
		Description: "List renders waiting in the queue",
		Tags:        []string{"renders"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.QueueResponse, error) {
		items := []models.QueueItem{}
		if s.options.Queue != nil {
			for _, req := range s.options.Queue.Pending() {
				items = append(items, models.QueueItem{
					RenderID:  req.ID,
					VideoPath: req.VideoPath,
					Output:    req.OutputPath,
					Stdout:    req.Stdout,
				})
			}
		}
		return &models.QueueResponse{
			Body: models.QueueData{Items: items, Count: len(items)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-renders",
		Method:      http.MethodGet,
		Path:        "/api/renders",
		Summary:     "Renders",
		Description: "Get the render in progress and recently completed renders",
		Tags:        []string{"renders"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.RendersResponse, error) {
		body := models.RendersData{Recent: []models.RenderStatus{}}
		if s.options.Tracker != nil {
			body.Current, body.Recent = s.options.Tracker.Snapshot()
		}
		return &models.RendersResponse{Body: body}, nil
	})
}
