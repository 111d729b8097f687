package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	PageContentTypeText        = "text"
	PageContentTypeTextDiagram = "text_and_diagram"
	PageContentTypeFrame       = "video_frame"
	PageContentTypeTranscript  = "transcript"
)

// PageUnit is the text belonging to one page of a document or one temporal
// segment of a video. The sequence of PageUnits for a job is index-stable: a
// page whose extraction failed keeps its slot with empty text rather than
// being dropped.
type PageUnit struct {
	Index       int // 1-based page number / timeline position
	Text        string
	ContentType string
	ImageURL    string
	Timestamp   *float64 // seconds from start, audiovisual sources only
}

// ChunkMetadata travels with every chunk into the metadata JSON column.
type ChunkMetadata struct {
	FileName    string   `json:"file_name"`
	TotalPages  int      `json:"total_pages"`
	DocumentId  string   `json:"document_id"`
	PageNumber  int      `json:"page_number"`
	ContentType string   `json:"content_type"`
	ImageURL    string   `json:"image_url,omitempty"`
	Timestamp   *float64 `json:"timestamp_seconds,omitempty"`
}

// Chunk is the unit of embedding and indexing: a bounded, overlapping text
// segment derived from a PageUnit. ChunkIndex is the stable ordinal assigned
// at creation; for a given document the ordinals are a contiguous range
// starting at 0.
type Chunk struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	UserId      uuid.UUID
	ClassroomId int64
	UnitNo      int
	ChunkIndex  int
	Content     string
	Embedding   []float32
	Metadata    ChunkMetadata
	CreatedAt   time.Time
}
