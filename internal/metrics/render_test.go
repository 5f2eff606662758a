package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProgressSinkSetsGauges(t *testing.T) {
	video := "sink-test.mp4"
	defer DeleteRender(video)

	sink := ProgressSink{Video: video}
	sink.SetTotal(1440)
	sink.SetPosition(720)

	if got := testutil.ToFloat64(renderFramesTotal.WithLabelValues(video)); got != 1440 {
		t.Errorf("frames gauge = %v, want 1440", got)
	}
	if got := testutil.ToFloat64(renderFrame.WithLabelValues(video)); got != 720 {
		t.Errorf("frame gauge = %v, want 720", got)
	}
}

func TestDeleteRenderRemovesSeries(t *testing.T) {
	video := "delete-test.mp4"
	SetFrame(video, 10)
	SetTotalFrames(video, 20)
	DeleteRender(video)

	if renderFrame.DeleteLabelValues(video) {
		t.Error("frame series still present after DeleteRender")
	}
	if renderFramesTotal.DeleteLabelValues(video) {
		t.Error("frames series still present after DeleteRender")
	}
}

func TestWriteTextfile(t *testing.T) {
	SetTotalFrames("textfile.mp4", 100)
	defer DeleteRender("textfile.mp4")
	ObserveRender(ResultSuccess, 3*time.Second)
	ObserveRender(ResultFailure, time.Second)
	SetQueueLength(2)

	path := filepath.Join(t.TempDir(), "teres.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`teres_render_frames{video="textfile.mp4"} 100`,
		`teres_renders_total{result="success"}`,
		`teres_renders_total{result="failure"}`,
		"teres_render_duration_seconds_count",
		"teres_queue_length 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}
