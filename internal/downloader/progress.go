package downloader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dtroode/audiograb-server/internal/model"
)

const progressPrefix = "[progress]"

// progressTemplate makes yt-dlp print one parseable line per progress update.
const progressTemplate = "download:" + progressPrefix + " %(progress._percent_str)s"

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// parseProgressLine maps a line of yt-dlp output to a progress event.
func parseProgressLine(line string) (model.Event, bool) {
	line = strings.TrimSpace(ansi.ReplaceAllString(line, ""))

	switch {
	case strings.HasPrefix(line, progressPrefix):
		raw := strings.TrimSpace(strings.TrimPrefix(line, progressPrefix))
		percent, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			percent = 0
		}
		return model.ProgressEvent(percent, "Downloading..."), true
	case strings.HasPrefix(line, "[ExtractAudio]"):
		return model.ProgressEvent(95, "Converting to mp3..."), true
	default:
		return model.Event{}, false
	}
}
