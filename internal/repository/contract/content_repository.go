package contract

import (
	"context"

	"classroom-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ContentRepository interface {
	Create(ctx context.Context, record *entity.ContentRecord) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ContentRecord, error)
	FindByClassroom(ctx context.Context, classroomId int64) ([]*entity.ContentRecord, error)
	// MarkCompleted sets the terminal "completed" status together with the
	// final page and chunk counts. Only records still in "processing" are
	// updated; a terminal record is never re-mutated.
	MarkCompleted(ctx context.Context, id uuid.UUID, totalPages, totalChunks int) error
	// MarkFailed sets the terminal "failed" status. Same guard as MarkCompleted.
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
