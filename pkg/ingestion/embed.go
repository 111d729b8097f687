package ingestion

import (
	"context"
	"fmt"

	"classroom-ai-be/internal/entity"
)

const embedTaskType = "RETRIEVAL_DOCUMENT"

// embedChunks generates vectors in fixed-size batches, one rate limiter
// admission per upstream call. Unlike extraction and enrichment, any failure
// here is fatal: a chunk without a vector is unsearchable, so persisting it
// would silently corrupt retrieval.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*entity.Chunk) error {
	batchSize := p.deps.Cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := p.deps.Limiter.Wait(ctx, ServiceEmbedding); err != nil {
			return fmt.Errorf("embedding admission: %w", err)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := p.deps.Embedder.GenerateBatch(texts, embedTaskType)
		if err != nil {
			return fmt.Errorf("generate embeddings for chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding batch size mismatch: sent %d texts, got %d vectors", len(texts), len(vectors))
		}

		for i, vector := range vectors {
			chunks[start+i].Embedding = vector
		}
	}
	return nil
}
