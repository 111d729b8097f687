package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const diagramSystemInstruction = "You are a specialist in technical and systems analysis. Analyze the provided image, which is a technical diagram. Your description should be detailed and structured. Use markdown lists to break down the components. Identify all visible elements, including shapes, icons, labels, and text. Describe the connections, arrows, and flows between components to explain their relationships and interactions. Infer the overall purpose or function of the system depicted in the diagram based on its structure."

type GeminiDescriber struct {
	ApiKey string
	Model  string
	Client *http.Client
}

func NewGeminiDescriber(apiKey, model string) *GeminiDescriber {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiDescriber{
		ApiKey: apiKey,
		Model:  model,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []*geminiPart `json:"parts"`
	Role  string        `json:"role,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"system_instruction,omitempty"`
	Contents          []*geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

func (d *GeminiDescriber) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []*geminiPart{{Text: diagramSystemInstruction}},
		},
		Contents: []*geminiContent{
			{
				Role: "user",
				Parts: []*geminiPart{
					{Text: prompt},
					{InlineData: &geminiInlineData{
						MimeType: "image/jpeg",
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		d.Model,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", d.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := d.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error from gemini vision response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resByte, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini vision")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty response from gemini vision")
	}
	return text, nil
}
