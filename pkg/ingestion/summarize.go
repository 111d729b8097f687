package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/pkg/llm"
)

const summaryInstruction = "Summarize the following technical text. " +
	"Retain every key technical term, specification, data point and core concept. " +
	"Be concise and strip filler content. Return only the summary."

// summarizeChunks replaces each chunk's content with a model summary. The
// stage is fully degradable: any per-chunk failure keeps the original text
// and records a diagnostic.
func (p *Pipeline) summarizeChunks(ctx context.Context, chunks []*entity.Chunk, diags *Diagnostics) {
	if p.deps.Summarizer == nil {
		return
	}

	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(c *entity.Chunk) {
			defer wg.Done()

			unit := fmt.Sprintf("chunk %d", c.ChunkIndex)
			if err := p.deps.Limiter.Wait(ctx, ServiceSummarize); err != nil {
				diags.Add(StageSummarize, unit, err)
				return
			}

			summary, err := p.deps.Summarizer.Chat(ctx, []llm.Message{
				{Role: "system", Content: summaryInstruction},
				{Role: "user", Content: c.Content},
			})
			if err != nil {
				diags.Add(StageSummarize, unit, err)
				return
			}

			summary = strings.TrimSpace(summary)
			if summary == "" {
				diags.Addf(StageSummarize, unit, "model returned an empty summary")
				return
			}
			c.Content = summary
		}(chunk)
	}
	wg.Wait()
}
