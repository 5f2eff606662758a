package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/teres/internal/api/models"
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/render"
)

type fakeQueue []*render.Request

func (q fakeQueue) Pending() []*render.Request { return q }

func get(t *testing.T, s *Server, path string, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := NewServer(&Options{})
	w := get(t, s, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode[models.HealthData](t, w); body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
}

func TestQueueEndpoint(t *testing.T) {
	req, err := render.NewRequestWithScript("/videos/clip.mp4", "/tmp/blur.vpy", config.DefaultSettings(), false)
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(&Options{Queue: fakeQueue{req}})

	w := get(t, s, "/api/queue", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decode[models.QueueData](t, w)
	if body.Count != 1 || body.Items[0].RenderID != req.ID || body.Items[0].Output != req.OutputPath {
		t.Errorf("queue = %+v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	s := NewServer(&Options{AuthUsername: "admin", AuthPassword: "secret"})

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"health is public", "/api/health", "", http.StatusOK},
		{"missing credentials", "/api/queue", "", http.StatusUnauthorized},
		{"wrong password", "/api/queue", "admin:nope", http.StatusUnauthorized},
		{"valid credentials", "/api/queue", "admin:secret", http.StatusOK},
		{"query credentials", "/api/queue?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(t, s, tt.path, tt.auth); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestLogsEndpoint(t *testing.T) {
	logging.Initialize(logging.Config{Level: "debug", Format: "text"})
	logging.SetOutput(nopWriter{})
	logging.GetLogger("ffmpeg").Error("Conversion failed!")
	logging.GetLogger("render").Info("unrelated")

	s := NewServer(&Options{})
	w := get(t, s, "/api/logs?module=ffmpeg&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decode[models.LogsData](t, w)
	if body.Count != 1 || body.Entries[0].Message != "Conversion failed!" || body.Entries[0].Module != "ffmpeg" {
		t.Errorf("logs = %+v", body)
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRendersEndpoint(t *testing.T) {
	bus := events.New()
	defer bus.Close()
	tracker := NewTracker(bus)
	defer tracker.Close()

	bus.Publish(events.RenderFailedEvent{RenderID: "r1", VideoPath: "/videos/a.mp4", Code: render.ErrCodeProcessFailed, ExitCode: 1})
	waitFor(t, func() bool {
		_, recent := tracker.Snapshot()
		return len(recent) == 1
	})

	s := NewServer(&Options{Tracker: tracker})
	w := get(t, s, "/api/renders", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decode[models.RendersData](t, w)
	if body.Current != nil || len(body.Recent) != 1 || body.Recent[0].State != models.RenderFailed {
		t.Errorf("renders = %+v", body)
	}
}

func TestOpenAPIListsRoutes(t *testing.T) {
	s := NewServer(&Options{EventBus: events.New()})
	w := get(t, s, "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, path := range []string{"/api/queue", "/api/renders", "/api/logs", "/api/events"} {
		if !strings.Contains(w.Body.String(), path) {
			t.Errorf("openapi document missing %s", path)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
