// Package downloader fetches audio tracks with yt-dlp and ffmpeg.
package downloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dtroode/audiograb-server/internal/config"
	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
)

const (
	bytesInMB = 1024 * 1024

	// stderrLimit bounds the tool output kept for error messages.
	stderrLimit = 4096
)

var (
	ErrToolNotFound = errors.New("required tool not found")
	ErrNoOutput     = errors.New("mp3 file was not created")
	ErrTooLarge     = errors.New("file exceeds size limit")
)

// ExecCommandFunc creates the command for a tool invocation.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// Option configures a YTDLP.
type Option func(*YTDLP)

// WithExecCommand replaces process creation, used by tests.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(y *YTDLP) { y.execCommand = fn }
}

// WithHTTPClient replaces the client used for thumbnails.
func WithHTTPClient(c *http.Client) Option {
	return func(y *YTDLP) { y.httpClient = c }
}

// YTDLP is a model.Fetcher backed by the yt-dlp command line tool.
type YTDLP struct {
	ytdlpPath   string
	ffmpegPath  string
	execCommand ExecCommandFunc
	httpClient  *http.Client
	logger      *logger.Logger
}

var _ model.Fetcher = (*YTDLP)(nil)

// NewYTDLP resolves yt-dlp and ffmpeg on PATH. A missing tool is an error so
// that the server refuses to start without them.
func NewYTDLP(cfg config.Download, logger *logger.Logger, opts ...Option) (*YTDLP, error) {
	ytdlp, err := exec.LookPath(cfg.YTDLPPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, cfg.YTDLPPath, err)
	}
	ffmpeg, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, cfg.FFmpegPath, err)
	}

	y := &YTDLP{
		ytdlpPath:   ytdlp,
		ffmpegPath:  ffmpeg,
		execCommand: exec.CommandContext,
		httpClient:  &http.Client{Timeout: cfg.ThumbnailTimeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y, nil
}

type videoInfo struct {
	Title      string `json:"title"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// Fetch downloads the audio behind req.URL as mp3 into req.OutDir, followed by
// the highest quality thumbnail. Progress is reported to sink; a failed
// thumbnail does not fail the fetch.
func (y *YTDLP) Fetch(ctx context.Context, req model.FetchRequest, sink model.ProgressSink) (res model.FetchResult, err error) {
	defer func() {
		if err != nil {
			y.send(ctx, sink, 0, "Error: "+err.Error())
		}
	}()

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return model.FetchResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	y.send(ctx, sink, 5, "Fetching video info...")

	info, err := y.metadata(ctx, req.URL)
	if err != nil {
		return model.FetchResult{}, err
	}
	title := SafeFileName(info.Title)
	res.Title = title

	y.send(ctx, sink, 10, "Starting download: "+title)

	if err := y.download(ctx, req, title, sink); err != nil {
		return model.FetchResult{}, err
	}

	res.MP3Path = filepath.Join(req.OutDir, title+".mp3")
	stat, err := os.Stat(res.MP3Path)
	if err != nil {
		return model.FetchResult{}, ErrNoOutput
	}
	if req.MaxSizeMB > 0 {
		sizeMB := float64(stat.Size()) / bytesInMB
		if sizeMB > float64(req.MaxSizeMB) {
			os.Remove(res.MP3Path)
			return model.FetchResult{}, fmt.Errorf("%w: file (%.1f MB) exceeds limit %d MB and was deleted", ErrTooLarge, sizeMB, req.MaxSizeMB)
		}
	}

	y.send(ctx, sink, 90, "Downloading thumbnail...")

	if len(info.Thumbnails) == 0 || info.Thumbnails[len(info.Thumbnails)-1].URL == "" {
		y.send(ctx, sink, 95, "Thumbnail unavailable")
	} else {
		thumbURL := info.Thumbnails[len(info.Thumbnails)-1].URL
		path := filepath.Join(req.OutDir, title+"_thumbnail"+thumbnailExt(thumbURL))
		if err := y.fetchThumbnail(ctx, thumbURL, path); err != nil {
			y.logger.Warn("Downloader: thumbnail failed", "url", thumbURL, "error", err)
			y.send(ctx, sink, 95, "Could not download thumbnail: "+err.Error())
		} else {
			res.ThumbPath = path
			y.send(ctx, sink, 95, "Thumbnail saved")
		}
	}

	y.send(ctx, sink, 100, "Done!")

	return res, nil
}

func (y *YTDLP) metadata(ctx context.Context, url string) (videoInfo, error) {
	cmd := y.execCommand(ctx, y.ytdlpPath, "--dump-single-json", "--no-playlist", "--no-warnings", url)
	stderr := &limitedBuffer{max: stderrLimit}
	cmd.Stderr = stderr

	out, err := cmd.Output()
	if err != nil {
		return videoInfo{}, toolError("failed to fetch video info", err, stderr)
	}

	var info videoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return videoInfo{}, fmt.Errorf("failed to decode video info: %w", err)
	}
	return info, nil
}

func (y *YTDLP) download(ctx context.Context, req model.FetchRequest, title string, sink model.ProgressSink) error {
	cmd := y.execCommand(ctx, y.ytdlpPath, downloadArgs(req, title, y.ffmpegPath)...)
	stderr := &limitedBuffer{max: stderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open yt-dlp output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if ev, ok := parseProgressLine(scanner.Text()); ok {
			if err := sink.Send(ctx, ev); err != nil {
				y.logger.Debug("Downloader: progress not delivered", "error", err)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		return toolError("download failed", err, stderr)
	}
	return nil
}

func downloadArgs(req model.FetchRequest, title, ffmpegPath string) []string {
	format := "bestaudio/best"
	if req.MaxSizeMB > 0 {
		format = fmt.Sprintf("bestaudio[filesize<%dM]/best[filesize<%dM]", req.MaxSizeMB, req.MaxSizeMB)
	}
	return []string{
		"-f", format,
		"-x", "--audio-format", "mp3", "--audio-quality", "320K",
		"--ffmpeg-location", ffmpegPath,
		"--no-playlist",
		"--newline",
		"--progress-template", progressTemplate,
		"-o", filepath.Join(req.OutDir, title+".%(ext)s"),
		req.URL,
	}
}

func (y *YTDLP) fetchThumbnail(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (y *YTDLP) send(ctx context.Context, sink model.ProgressSink, progress float64, status string) {
	if err := sink.Send(ctx, model.ProgressEvent(progress, status)); err != nil {
		y.logger.Debug("Downloader: progress not delivered", "error", err)
	}
}

// SafeFileName replaces characters that are unsafe in file names.
func SafeFileName(title string) string {
	if strings.TrimSpace(title) == "" {
		return "audio"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, title)
}

func thumbnailExt(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "webp"):
		return ".webp"
	case strings.Contains(lower, "png"):
		return ".png"
	default:
		return ".jpg"
	}
}

func toolError(msg string, err error, stderr *limitedBuffer) error {
	if s := strings.TrimSpace(stderr.String()); s != "" {
		return fmt.Errorf("%s: %w: %s", msg, err, s)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// limitedBuffer keeps the last max bytes written to it.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if over := b.buf.Len() - b.max; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
