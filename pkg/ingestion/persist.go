package ingestion

import (
	"context"
	"fmt"

	"classroom-ai-be/internal/entity"
)

// persist writes all chunks and flips the record to "completed" inside one
// transaction. The status flip is guarded on the current status still being
// "processing", so a record that was already terminated elsewhere is never
// overwritten.
func (p *Pipeline) persist(ctx context.Context, job *Job, totalPages int, chunks []*entity.Chunk) error {
	uow := p.deps.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin persistence transaction: %w", err)
	}

	if err := uow.ChunkRepository().CreateBulk(ctx, chunks); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("insert chunks: %w", err)
	}

	if err := uow.ContentRepository().MarkCompleted(ctx, job.ContentId, totalPages, len(chunks)); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("mark record completed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit persistence transaction: %w", err)
	}
	return nil
}
