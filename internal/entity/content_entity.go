package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContentStatus string

const (
	ContentStatusProcessing ContentStatus = "processing"
	ContentStatusCompleted  ContentStatus = "completed"
	ContentStatusFailed     ContentStatus = "failed"
)

type ContentKind string

const (
	ContentKindDocument ContentKind = "document"
	ContentKindVideo    ContentKind = "video"
	ContentKindYoutube  ContentKind = "youtube"
)

// ContentRecord is the persisted lifecycle record for one ingested upload.
// It is created with status "processing" before the job is enqueued and is
// flipped to exactly one terminal status by the pipeline. Once terminal it is
// never mutated again.
type ContentRecord struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	ClassroomId int64
	UnitNo      int
	OriginBlog  *uuid.UUID
	OriginWork  *uuid.UUID
	Kind        ContentKind
	FileName    string
	SourceURL   string
	Status      ContentStatus
	TotalPages  int
	TotalChunks int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (r *ContentRecord) IsTerminal() bool {
	return r.Status == ContentStatusCompleted || r.Status == ContentStatusFailed
}
