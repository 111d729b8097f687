package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/pkg/utils"
)

// pageLayout accumulates area measurements used by the diagram heuristic.
type pageLayout struct {
	pageArea  float64
	textArea  float64
	imageArea float64
}

func (p *Pipeline) processDocument(ctx context.Context, job *Job, diags *Diagnostics) ([]entity.PageUnit, error) {
	totalPages, err := p.deps.Renderer.PageCount(job.Data)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if totalPages == 0 {
		return nil, errors.New("document has no pages")
	}

	pages, diagramPages := p.extractPages(ctx, job.Data, totalPages, diags)
	p.enrichDiagrams(ctx, job, pages, diagramPages, diags)
	return pages, nil
}

// extractPages OCRs the document in fixed-size page batches, all batches in
// flight at once. Every batch writes only its own index range, so the joined
// slice is in page order regardless of completion order. A failed batch
// leaves its slots as empty text rather than failing the job.
func (p *Pipeline) extractPages(ctx context.Context, data []byte, totalPages int, diags *Diagnostics) ([]entity.PageUnit, []int) {
	pages := make([]entity.PageUnit, totalPages)
	layouts := make([]pageLayout, totalPages)
	for i := range pages {
		pages[i] = entity.PageUnit{Index: i + 1, ContentType: entity.PageContentTypeText}
	}

	batch := p.deps.Cfg.OCRBatchPages
	if batch <= 0 {
		batch = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < totalPages; start += batch {
		end := start + batch
		if end > totalPages {
			end = totalPages
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			unit := fmt.Sprintf("pages %d-%d", start+1, end)
			if err := p.deps.Limiter.Wait(ctx, ServiceOCR); err != nil {
				diags.Add(StageExtraction, unit, err)
				return
			}

			result, err := p.deps.Analyzer.Analyze(ctx, data, fmt.Sprintf("%d-%d", start+1, end))
			if err != nil {
				diags.Add(StageExtraction, unit, err)
				return
			}

			for _, page := range result.Pages {
				idx := start + page.Number - 1
				if idx < start || idx >= end {
					continue
				}
				lines := make([]string, 0, len(page.Lines))
				for _, line := range page.Lines {
					lines = append(lines, line.Content)
					layouts[idx].textArea += line.Box.Area()
				}
				pages[idx].Text = utils.Normalize(strings.Join(lines, "\n"))
				layouts[idx].pageArea = page.Width * page.Height
			}
			for _, figure := range result.Figures {
				idx := start + figure.PageNumber - 1
				if idx < start || idx >= end {
					continue
				}
				layouts[idx].imageArea += figure.Box.Area()
			}
		}(start, end)
	}
	wg.Wait()

	var diagramPages []int
	for i, layout := range layouts {
		if layout.pageArea <= 0 {
			continue
		}
		imageRatio := layout.imageArea / layout.pageArea
		textRatio := layout.textArea / layout.pageArea
		if imageRatio > p.deps.Cfg.DiagramImageArea && textRatio < p.deps.Cfg.DiagramTextArea {
			diagramPages = append(diagramPages, i)
		}
	}
	return pages, diagramPages
}
