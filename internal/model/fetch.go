package model

import "context"

// Fetcher downloads the audio track behind a URL into a local directory.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest, sink ProgressSink) (FetchResult, error)
}

// FetchRequest describes a single fetch.
type FetchRequest struct {
	URL       string
	MaxSizeMB int
	OutDir    string
}

// FetchResult contains local paths of fetched artifacts. ThumbPath may be empty.
type FetchResult struct {
	Title     string
	MP3Path   string
	ThumbPath string
}
