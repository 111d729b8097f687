package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ffmpegBinary = "ffmpeg"
	ytdlpBinary  = "yt-dlp"
)

// FFmpegProcessor shells out to ffmpeg for the heavy media work.
type FFmpegProcessor struct{}

var _ Processor = &FFmpegProcessor{}

func NewFFmpegProcessor() *FFmpegProcessor {
	return &FFmpegProcessor{}
}

func (p *FFmpegProcessor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	output := base + ".audio.mp3"

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-acodec", "libmp3lame",
		"-b:a", "64k",
		output,
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("extract audio: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

func (p *FFmpegProcessor) SampleFrames(ctx context.Context, videoPath string, interval float64, outDir string) ([]Frame, error) {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	if interval <= 0 {
		interval = 1.0
	}

	pattern := filepath.Join(outDir, "frame_%06d.jpg")
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%g", interval),
		"-q:v", "4",
		pattern,
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("sample frames: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	paths, err := filepath.Glob(filepath.Join(outDir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	frames := make([]Frame, len(paths))
	for i, path := range paths {
		frames[i] = Frame{
			// ffmpeg numbers frames from 1; frame n is sampled at (n-1)*interval
			Timestamp: float64(i) * interval,
			Path:      path,
		}
	}
	return frames, nil
}

// YtDlpDownloader fetches remote videos through yt-dlp.
type YtDlpDownloader struct{}

var _ Downloader = &YtDlpDownloader{}

func NewYtDlpDownloader() *YtDlpDownloader {
	return &YtDlpDownloader{}
}

func (d *YtDlpDownloader) Fetch(ctx context.Context, url, outDir string) (string, error) {
	if _, err := exec.LookPath(ytdlpBinary); err != nil {
		return "", fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}

	output := filepath.Join(outDir, "source.mp4")
	args := []string{
		"-f", "mp4/bestvideo*+bestaudio/best",
		"--merge-output-format", "mp4",
		"-o", output,
		url,
	}

	cmd := exec.CommandContext(ctx, ytdlpBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("download video: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
