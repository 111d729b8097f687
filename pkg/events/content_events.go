package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventContentCompleted = "content.completed"
	EventContentFailed    = "content.failed"
)

// NewContentCompleted is emitted after a job's chunks are persisted and its
// record flipped to "completed".
func NewContentCompleted(contentId uuid.UUID, classroomId int64, totalPages, totalChunks int) Event {
	return BaseEvent{
		Type: EventContentCompleted,
		Data: map[string]interface{}{
			"content_id":   contentId.String(),
			"classroom_id": classroomId,
			"total_pages":  totalPages,
			"total_chunks": totalChunks,
		},
		OccurredAt: time.Now(),
	}
}

// NewContentFailed is emitted after a job reaches the "failed" terminal state.
func NewContentFailed(contentId uuid.UUID, classroomId int64, reason string) Event {
	return BaseEvent{
		Type: EventContentFailed,
		Data: map[string]interface{}{
			"content_id":   contentId.String(),
			"classroom_id": classroomId,
			"reason":       reason,
		},
		OccurredAt: time.Now(),
	}
}
