// Package models holds the request and response bodies of the status API.
package models

import "time"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2024-01-01T00:00:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go compiler version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Queue models
type QueueItem struct {
	RenderID  string `json:"render_id" doc:"Render identifier"`
	VideoPath string `json:"video_path" example:"/videos/clip.mp4" doc:"Absolute path of the source video"`
	Output    string `json:"output" example:"/videos/clip_blur.mp4" doc:"Requested output path"`
	Stdout    bool   `json:"stdout" doc:"Whether the render streams to stdout"`
}

type QueueData struct {
	Items []QueueItem `json:"items" doc:"Pending renders in order"`
	Count int         `json:"count" example:"2" doc:"Number of pending renders"`
}

type QueueResponse struct {
	Body QueueData
}

// Render status models
type RenderState string

const (
	RenderRunning  RenderState = "running"
	RenderFinished RenderState = "finished"
	RenderFailed   RenderState = "failed"
)

type RenderStatus struct {
	RenderID   string      `json:"render_id" doc:"Render identifier"`
	VideoPath  string      `json:"video_path" doc:"Absolute path of the source video"`
	Output     string      `json:"output,omitempty" doc:"Output name, - when streaming"`
	State      RenderState `json:"state" enum:"running,finished,failed" doc:"Render state"`
	Frame      uint64      `json:"frame" doc:"Last frame reported"`
	TotalFrame uint64      `json:"total_frames" doc:"Frame count, 0 until known"`
	StartedAt  time.Time   `json:"started_at,omitempty" doc:"When the pipeline was spawned"`
	Elapsed    string      `json:"elapsed,omitempty" example:"1m30s" doc:"Render duration once finished"`
	ErrorCode  string      `json:"error_code,omitempty" example:"PROCESS_FAILED" doc:"Failure code"`
	Error      string      `json:"error,omitempty" doc:"Failure message"`
	ExitCode   int         `json:"exit_code,omitempty" doc:"Transcoder exit code on failure"`
}

type RendersData struct {
	Current *RenderStatus  `json:"current,omitempty" doc:"Render in progress, if any"`
	Recent  []RenderStatus `json:"recent" doc:"Most recent completed renders, newest first"`
}

type RendersResponse struct {
	Body RendersData
}

// Log models
type LogsInput struct {
	Module string `query:"module" example:"ffmpeg" doc:"Only return entries of this module"`
	Limit  int    `query:"limit" default:"100" minimum:"1" maximum:"500" doc:"Maximum number of entries"`
}

type LogEntry struct {
	Timestamp  string         `json:"timestamp" doc:"RFC 3339 timestamp"`
	Level      string         `json:"level" example:"error" doc:"Log level"`
	Module     string         `json:"module" example:"ffmpeg" doc:"Logging module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

type LogsData struct {
	Entries []LogEntry `json:"entries" doc:"Log entries, oldest first"`
	Count   int        `json:"count" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
