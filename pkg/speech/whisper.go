package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// WhisperTranscriber calls an OpenAI-compatible /audio/transcriptions
// endpoint with verbose output so segment timestamps survive.
type WhisperTranscriber struct {
	BaseURL string
	ApiKey  string
	Model   string
	Client  *http.Client
}

func NewWhisperTranscriber(baseURL, apiKey, model string) *WhisperTranscriber {
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperTranscriber{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		ApiKey:  apiKey,
		Model:   model,
		Client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) ([]Segment, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.WriteField("model", t.Model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.ApiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("transcription api error: status %d body %s", resp.StatusCode, string(respBody))
	}

	var payload whisperResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	segments := make([]Segment, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
	}

	// Some compatible backends only return the flat text field.
	if len(segments) == 0 && strings.TrimSpace(payload.Text) != "" {
		segments = append(segments, Segment{Text: strings.TrimSpace(payload.Text)})
	}
	return segments, nil
}
