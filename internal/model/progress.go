package model

import "context"

// Event is a single message pushed to a download client.
// Fields are omitted from the wire form when unset.
type Event struct {
	Progress     *float64 `json:"progress,omitempty"`
	Status       string   `json:"status,omitempty"`
	Error        string   `json:"error,omitempty"`
	ComingSoon   bool     `json:"coming_soon,omitempty"`
	Platform     string   `json:"platform,omitempty"`
	TaskID       string   `json:"task_id,omitempty"`
	Message      string   `json:"message,omitempty"`
	DownloadURL  string   `json:"download_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	FileSizeMB   *float64 `json:"file_size_mb,omitempty"`
}

// ProgressEvent builds an Event carrying a progress value and status line.
func ProgressEvent(progress float64, status string) Event {
	return Event{Progress: &progress, Status: status}
}

// ProgressSink receives progress events for a running download.
type ProgressSink interface {
	Send(ctx context.Context, event Event) error
}

// DiscardProgress is a ProgressSink that drops every event.
var DiscardProgress ProgressSink = discardSink{}

type discardSink struct{}

func (discardSink) Send(context.Context, Event) error { return nil }
