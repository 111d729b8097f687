package contract

import (
	"context"

	"classroom-ai-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunk wraps a Chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      *entity.Chunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.Chunk, error)
	CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	// SearchSimilar runs a pgvector cosine search over one classroom's chunks.
	SearchSimilar(ctx context.Context, embedding []float32, classroomId int64, limit int, threshold float64) ([]*ScoredChunk, error)
}
