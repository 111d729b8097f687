package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitYoutubeRequest struct {
	URL        string     `json:"url" validate:"required,url"`
	UnitNo     int        `json:"unit_no" validate:"required,min=1"`
	OriginBlog *uuid.UUID `json:"origin_blog"`
	OriginWork *uuid.UUID `json:"origin_work"`
}

type UploadContentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ContentStatusResponse struct {
	Id          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	FileName    string     `json:"file_name,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Status      string     `json:"status"`
	TotalPages  int        `json:"total_pages"`
	TotalChunks int        `json:"total_chunks"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ContentChunkItem struct {
	Id          uuid.UUID `json:"id"`
	ChunkIndex  int       `json:"chunk_index"`
	Content     string    `json:"content"`
	PageNumber  int       `json:"page_number"`
	ContentType string    `json:"content_type"`
	ImageURL    string    `json:"image_url,omitempty"`
	Timestamp   *float64  `json:"timestamp_seconds,omitempty"`
}

type DeleteContentResponse struct {
	Id            uuid.UUID `json:"id"`
	ChunksRemoved int64     `json:"chunks_removed"`
}

type SearchResultItem struct {
	DocumentId  uuid.UUID `json:"document_id"`
	FileName    string    `json:"file_name"`
	Content     string    `json:"content"`
	Similarity  float64   `json:"similarity"`
	PageNumber  int       `json:"page_number"`
	ContentType string    `json:"content_type"`
	ImageURL    string    `json:"image_url,omitempty"`
	Timestamp   *float64  `json:"timestamp_seconds,omitempty"`
}
