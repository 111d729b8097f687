package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/pkg/media"
	"classroom-ai-be/pkg/utils"
)

// timedUnit is one timeline entry produced by either the transcript branch or
// the frame branch before the final merge.
type timedUnit struct {
	timestamp   float64
	text        string
	contentType string
	imageURL    string
}

// processVideo materializes the source to a temp dir, then runs two branches:
// audio extraction + transcription, and frame sampling + per-frame analysis.
// Both branches degrade independently; the job only fails here when the
// source itself cannot be materialized. The merged timeline is sorted by
// timestamp, so interleaving between branches is deterministic.
func (p *Pipeline) processVideo(ctx context.Context, job *Job, remote bool, diags *Diagnostics) ([]entity.PageUnit, error) {
	tempDir, err := os.MkdirTemp("", "ingest-video-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	videoPath, err := p.materializeVideo(ctx, job, remote, tempDir)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var units []timedUnit
	appendUnits := func(batch []timedUnit) {
		mu.Lock()
		units = append(units, batch...)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		appendUnits(p.transcribeVideo(ctx, videoPath, diags))
	}()
	go func() {
		defer wg.Done()
		appendUnits(p.analyzeFrames(ctx, job, videoPath, tempDir, diags))
	}()
	wg.Wait()

	if len(units) == 0 {
		return nil, errors.New("video produced no transcript and no analyzable frames")
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].timestamp < units[j].timestamp
	})

	pages := make([]entity.PageUnit, 0, len(units))
	for i, u := range units {
		ts := u.timestamp
		pages = append(pages, entity.PageUnit{
			Index:       i + 1,
			Text:        u.text,
			ContentType: u.contentType,
			ImageURL:    u.imageURL,
			Timestamp:   &ts,
		})
	}
	return pages, nil
}

func (p *Pipeline) materializeVideo(ctx context.Context, job *Job, remote bool, tempDir string) (string, error) {
	if remote {
		if p.deps.Downloader == nil {
			return "", errors.New("no downloader configured for remote video")
		}
		path, err := p.deps.Downloader.Fetch(ctx, job.RemoteURL, tempDir)
		if err != nil {
			return "", fmt.Errorf("fetch remote video: %w", err)
		}
		return path, nil
	}

	ext := filepath.Ext(job.FileName)
	if ext == "" {
		ext = ".mp4"
	}
	path := filepath.Join(tempDir, "source"+ext)
	if err := os.WriteFile(path, job.Data, 0o600); err != nil {
		return "", fmt.Errorf("write video payload: %w", err)
	}
	return path, nil
}

// transcribeVideo extracts the audio track and converts it to timestamped
// transcript units. Any failure degrades to an empty contribution.
func (p *Pipeline) transcribeVideo(ctx context.Context, videoPath string, diags *Diagnostics) []timedUnit {
	if p.deps.Transcriber == nil {
		diags.Addf(StageExtraction, "transcript", "no transcriber configured")
		return nil
	}

	audioPath, err := p.deps.Media.ExtractAudio(ctx, videoPath)
	if err != nil {
		diags.Add(StageExtraction, "transcript", err)
		return nil
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		diags.Add(StageExtraction, "transcript", err)
		return nil
	}

	if err := p.deps.Limiter.Wait(ctx, ServiceTranscribe); err != nil {
		diags.Add(StageExtraction, "transcript", err)
		return nil
	}

	segments, err := p.deps.Transcriber.Transcribe(ctx, audio, filepath.Base(audioPath))
	if err != nil {
		diags.Add(StageExtraction, "transcript", err)
		return nil
	}

	units := make([]timedUnit, 0, len(segments))
	for _, seg := range segments {
		text := utils.Normalize(seg.Text)
		if text == "" {
			continue
		}
		units = append(units, timedUnit{
			timestamp:   seg.Start,
			text:        text,
			contentType: entity.PageContentTypeTranscript,
		})
	}
	return units
}

// analyzeFrames samples frames at a fixed interval, keeps only frames whose
// pixels moved past the motion threshold (plus the first and last frame), and
// runs OCR and vision description on each kept frame concurrently. Failed
// frames are skipped with a diagnostic.
func (p *Pipeline) analyzeFrames(ctx context.Context, job *Job, videoPath, tempDir string, diags *Diagnostics) []timedUnit {
	frameDir := filepath.Join(tempDir, "frames")
	if err := os.MkdirAll(frameDir, 0o700); err != nil {
		diags.Add(StageExtraction, "frames", err)
		return nil
	}

	sampled, err := p.deps.Media.SampleFrames(ctx, videoPath, p.deps.Cfg.FrameInterval, frameDir)
	if err != nil {
		diags.Add(StageExtraction, "frames", err)
		return nil
	}
	if len(sampled) == 0 {
		return nil
	}

	decoded, decodeErrs := media.DecodeFrames(sampled)
	for _, derr := range decodeErrs {
		diags.Add(StageExtraction, "frames", derr)
	}
	keyFrames := media.SelectKeyFrames(decoded, p.deps.Cfg.MotionThreshold)

	units := make([]timedUnit, len(keyFrames))
	ok := make([]bool, len(keyFrames))

	var wg sync.WaitGroup
	for i, frame := range keyFrames {
		wg.Add(1)
		go func(i int, frame media.DecodedFrame) {
			defer wg.Done()

			unit := fmt.Sprintf("frame %.0fs", frame.Timestamp)
			data, err := os.ReadFile(frame.Path)
			if err != nil {
				diags.Add(StageExtraction, unit, err)
				return
			}

			key := fmt.Sprintf("%s/frame_%06.0f.jpeg", job.ContentId.String(), frame.Timestamp)
			imageURL, err := p.deps.Store.Put(ctx, p.deps.Bucket, key, data, "image/jpeg")
			if err != nil {
				diags.Add(StageExtraction, unit, err)
				return
			}

			onScreenText, description := p.analyzeFrameContent(ctx, data, frame.Timestamp, unit, diags)

			text := frameText(frame.Timestamp, description, onScreenText)
			if text == "" {
				return
			}
			units[i] = timedUnit{
				timestamp:   frame.Timestamp,
				text:        text,
				contentType: entity.PageContentTypeFrame,
				imageURL:    imageURL,
			}
			ok[i] = true
		}(i, frame)
	}
	wg.Wait()

	out := make([]timedUnit, 0, len(keyFrames))
	for i, u := range units {
		if ok[i] {
			out = append(out, u)
		}
	}
	return out
}

// analyzeFrameContent runs OCR and vision description for one frame in
// parallel. Either side may come back empty.
func (p *Pipeline) analyzeFrameContent(ctx context.Context, data []byte, timestamp float64, unit string, diags *Diagnostics) (onScreenText, description string) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := p.deps.Limiter.Wait(ctx, ServiceOCR); err != nil {
			diags.Add(StageExtraction, unit, err)
			return
		}
		result, err := p.deps.Analyzer.Analyze(ctx, data, "")
		if err != nil {
			diags.Add(StageExtraction, unit, err)
			return
		}
		var lines []string
		for _, page := range result.Pages {
			for _, line := range page.Lines {
				lines = append(lines, line.Content)
			}
		}
		onScreenText = utils.Normalize(strings.Join(lines, "\n"))
	}()

	go func() {
		defer wg.Done()
		prompt := fmt.Sprintf("This frame was captured at %.0f seconds into a lecture video. Describe what is shown.", timestamp)
		described := p.describeImage(ctx, data, prompt, unit, diags)
		if described != "" {
			description = described
		}
	}()

	wg.Wait()
	return onScreenText, description
}

func frameText(timestamp float64, description, onScreenText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame at %.0f seconds.", timestamp)
	if description != "" {
		b.WriteString(" Visual: ")
		b.WriteString(description)
	}
	if onScreenText != "" {
		b.WriteString(" On-screen text: ")
		b.WriteString(onScreenText)
	}
	if description == "" && onScreenText == "" {
		return ""
	}
	return b.String()
}
