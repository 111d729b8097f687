package ingestion

import (
	"fmt"
	"sync"
)

const (
	StageExtraction = "extraction"
	StageEnrichment = "enrichment"
	StageSummarize  = "summarization"
)

// Diagnostic records one intentionally swallowed per-unit failure (an OCR
// batch, a diagram page, a video frame) so partial degradation stays visible
// next to the terminal status instead of only in logs.
type Diagnostic struct {
	Stage string `json:"stage"`
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

// Diagnostics is safe for the concurrent fan-out inside a stage.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) Add(stage, unit string, err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, Diagnostic{
		Stage: stage,
		Unit:  unit,
		Error: err.Error(),
	})
}

func (d *Diagnostics) Addf(stage, unit, format string, args ...interface{}) {
	d.Add(stage, unit, fmt.Errorf(format, args...))
}

func (d *Diagnostics) Items() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}
