package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const analyzeAPIVersion = "2024-11-30"

// AzureAnalyzer talks to Azure Document Intelligence (prebuilt-layout).
// Analysis is asynchronous: submit returns an operation URL which is polled
// until the service reports a terminal state.
type AzureAnalyzer struct {
	Endpoint     string
	ApiKey       string
	Model        string
	PollInterval time.Duration
	Client       *http.Client
}

func NewAzureAnalyzer(endpoint, apiKey string) *AzureAnalyzer {
	return &AzureAnalyzer{
		Endpoint:     endpoint,
		ApiKey:       apiKey,
		Model:        "prebuilt-layout",
		PollInterval: 2 * time.Second,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type analyzeRequest struct {
	Base64Source string `json:"base64Source"`
}

type azurePolygonLine struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon"`
}

type azurePage struct {
	PageNumber int                `json:"pageNumber"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Lines      []azurePolygonLine `json:"lines"`
}

type azureBoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

type azureFigure struct {
	BoundingRegions []azureBoundingRegion `json:"boundingRegions"`
}

type azureAnalyzeResult struct {
	Pages   []azurePage   `json:"pages"`
	Figures []azureFigure `json:"figures"`
}

type azureOperation struct {
	Status        string              `json:"status"`
	Error         *azureError         `json:"error"`
	AnalyzeResult *azureAnalyzeResult `json:"analyzeResult"`
}

type azureError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *AzureAnalyzer) Analyze(ctx context.Context, data []byte, pageRange string) (*Result, error) {
	operationURL, err := a.submit(ctx, data, pageRange)
	if err != nil {
		return nil, err
	}
	return a.poll(ctx, operationURL, rangeStart(pageRange))
}

// rangeStart parses the first page of a pages=N-M selector. An empty or
// malformed selector means the whole document was analyzed, starting at 1.
func rangeStart(pageRange string) int {
	first := pageRange
	if i := strings.IndexAny(pageRange, "-,"); i >= 0 {
		first = pageRange[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (a *AzureAnalyzer) submit(ctx context.Context, data []byte, pageRange string) (string, error) {
	endpoint := fmt.Sprintf(
		"%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		a.Endpoint, a.Model, analyzeAPIVersion,
	)
	if pageRange != "" {
		endpoint += "&pages=" + url.QueryEscape(pageRange)
	}

	payload := analyzeRequest{
		Base64Source: base64.StdEncoding.EncodeToString(data),
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := a.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("ocr analyze submit failed, code %d, body %s", res.StatusCode, string(body))
	}

	operationURL := res.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("ocr analyze submit returned no Operation-Location header")
	}
	return operationURL, nil
}

func (a *AzureAnalyzer) poll(ctx context.Context, operationURL string, rangeStart int) (*Result, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.PollInterval):
		}

		op, err := a.fetchOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("ocr operation succeeded without a result")
			}
			return mapAzureResult(op.AnalyzeResult, rangeStart), nil
		case "failed":
			if op.Error != nil {
				return nil, fmt.Errorf("ocr operation failed: %s: %s", op.Error.Code, op.Error.Message)
			}
			return nil, fmt.Errorf("ocr operation failed")
		}
		// "notStarted" / "running": keep polling
	}
}

func (a *AzureAnalyzer) fetchOperation(ctx context.Context, operationURL string) (*azureOperation, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", operationURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.ApiKey)

	res, err := a.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr operation poll failed, code %d, body %s", res.StatusCode, string(resByte))
	}

	var op azureOperation
	if err := json.Unmarshal(resByte, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func mapAzureResult(r *azureAnalyzeResult, rangeStart int) *Result {
	out := &Result{}
	for _, p := range r.Pages {
		page := Page{
			Number: p.PageNumber,
			Width:  p.Width,
			Height: p.Height,
		}
		for _, l := range p.Lines {
			page.Lines = append(page.Lines, Line{
				Content: l.Content,
				Box:     BoxFromPolygon(l.Polygon),
			})
		}
		out.Pages = append(out.Pages, page)
	}
	for _, f := range r.Figures {
		for _, region := range f.BoundingRegions {
			out.Figures = append(out.Figures, Figure{
				PageNumber: region.PageNumber,
				Box:        BoxFromPolygon(region.Polygon),
			})
		}
	}
	renumberFromRangeStart(out, rangeStart)
	return out
}

// renumberFromRangeStart rebases absolute page numbers onto the submitted
// pages=N-M selector, so the first requested page is 1. Anchoring on the
// selector rather than the lowest reported number keeps later pages in their
// correct slots when the service omits a leading page it found empty.
func renumberFromRangeStart(r *Result, start int) {
	shift := start - 1
	if shift <= 0 {
		return
	}
	for i := range r.Pages {
		r.Pages[i].Number -= shift
	}
	for i := range r.Figures {
		r.Figures[i].PageNumber -= shift
	}
}
