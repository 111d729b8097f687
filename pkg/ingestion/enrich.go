package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/pkg/imaging"
	"classroom-ai-be/pkg/vision"
)

const diagramMarker = "[Diagram] "

// enrichDiagrams rasterizes each diagram-heavy page, uploads the compressed
// image and appends a vision description to the page text. Pages are enriched
// concurrently; each goroutine owns exactly one page index. A page that fails
// to rasterize, compress or upload stays a plain text page. A failed
// description degrades to a placeholder but keeps the image.
func (p *Pipeline) enrichDiagrams(ctx context.Context, job *Job, pages []entity.PageUnit, diagramPages []int, diags *Diagnostics) {
	if len(diagramPages) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, idx := range diagramPages {
		wg.Add(1)
		go func(pageIdx int) {
			defer wg.Done()

			pageNo := pageIdx + 1
			unit := fmt.Sprintf("page %d", pageNo)

			raw, err := p.deps.Renderer.RenderPage(job.Data, pageIdx, 2.0)
			if err != nil {
				diags.Add(StageEnrichment, unit, err)
				return
			}

			compressed, err := imaging.CompressJPEG(raw, p.deps.Cfg.DiagramMaxWidth, p.deps.Cfg.DiagramMaxHeight, p.deps.Cfg.DiagramQuality)
			if err != nil {
				diags.Add(StageEnrichment, unit, err)
				return
			}

			key := fmt.Sprintf("%s/diagram_page_%d.jpeg", job.ContentId.String(), pageNo)
			imageURL, err := p.deps.Store.Put(ctx, p.deps.Bucket, key, compressed, "image/jpeg")
			if err != nil {
				diags.Add(StageEnrichment, unit, err)
				return
			}

			prompt := fmt.Sprintf("This diagram appears on page %d of a course document. Describe it in detail.", pageNo)
			description := p.describeImage(ctx, compressed, prompt, unit, diags)

			pages[pageIdx].Text = mergeDiagramText(pages[pageIdx].Text, description)
			pages[pageIdx].ContentType = entity.PageContentTypeTextDiagram
			pages[pageIdx].ImageURL = imageURL
		}(idx)
	}
	wg.Wait()
}

// describeImage never fails: missing describer, rate limit interruption or an
// upstream error all degrade to the placeholder text.
func (p *Pipeline) describeImage(ctx context.Context, image []byte, prompt, unit string, diags *Diagnostics) string {
	if p.deps.Describer == nil {
		return vision.PlaceholderDescription
	}
	if err := p.deps.Limiter.Wait(ctx, ServiceVision); err != nil {
		diags.Add(StageEnrichment, unit, err)
		return vision.PlaceholderDescription
	}
	description, err := p.deps.Describer.Describe(ctx, image, prompt)
	if err != nil {
		diags.Add(StageEnrichment, unit, err)
		return vision.PlaceholderDescription
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return vision.PlaceholderDescription
	}
	return description
}

func mergeDiagramText(text, description string) string {
	if text == "" {
		return diagramMarker + description
	}
	return text + "\n\n" + diagramMarker + description
}
