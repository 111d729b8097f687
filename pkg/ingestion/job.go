package ingestion

import "github.com/google/uuid"

type JobKind string

const (
	JobKindDocument JobKind = "document"
	JobKindVideo    JobKind = "video"
	JobKindYoutube  JobKind = "youtube"
)

// Job is one unit of ingestion work. The request layer creates the matching
// ContentRecord (status "processing") before enqueueing; the job itself is
// immutable once enqueued and consumed exactly once by the worker.
type Job struct {
	ContentId   uuid.UUID  `json:"content_id"` // job id == document/video id
	UserId      uuid.UUID  `json:"user_id"`
	ClassroomId int64      `json:"classroom_id"`
	UnitNo      int        `json:"unit_no"`
	OriginBlog  *uuid.UUID `json:"origin_blog,omitempty"`
	OriginWork  *uuid.UUID `json:"origin_work,omitempty"`
	Kind        JobKind    `json:"kind"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Data        []byte     `json:"data,omitempty"`       // raw upload payload
	RemoteURL   string     `json:"remote_url,omitempty"` // youtube jobs only
}
