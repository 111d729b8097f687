package media

import (
	"context"
	"image"
)

// Frame is one sampled video frame on disk.
type Frame struct {
	Timestamp float64 // seconds from start
	Path      string
}

// DecodedFrame carries the decoded pixels for motion analysis.
type DecodedFrame struct {
	Timestamp float64
	Path      string
	Image     image.Image
}

// Processor extracts derived media artifacts from a local video file.
type Processor interface {
	// ExtractAudio produces a mono compressed audio file next to the video.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	// SampleFrames writes one JPEG every 'interval' seconds into outDir and
	// returns them in timestamp order.
	SampleFrames(ctx context.Context, videoPath string, interval float64, outDir string) ([]Frame, error)
}

// Downloader resolves a remote video reference (e.g. a YouTube URL) to a
// local media file.
type Downloader interface {
	Fetch(ctx context.Context, url, outDir string) (string, error)
}
