package mapper

import (
	"time"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/model"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) ToEntity(e *model.ContentRecord) *entity.ContentRecord {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentRecord{
		Id:          e.Id,
		UserId:      e.UserId,
		ClassroomId: e.ClassroomId,
		UnitNo:      e.UnitNo,
		OriginBlog:  e.OriginBlog,
		OriginWork:  e.OriginWork,
		Kind:        entity.ContentKind(e.Kind),
		FileName:    e.FileName,
		SourceURL:   e.SourceURL,
		Status:      entity.ContentStatus(e.Status),
		TotalPages:  e.TotalPages,
		TotalChunks: e.TotalChunks,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ContentMapper) ToModel(e *entity.ContentRecord) *model.ContentRecord {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ContentRecord{
		Id:          e.Id,
		UserId:      e.UserId,
		ClassroomId: e.ClassroomId,
		UnitNo:      e.UnitNo,
		OriginBlog:  e.OriginBlog,
		OriginWork:  e.OriginWork,
		Kind:        string(e.Kind),
		FileName:    e.FileName,
		SourceURL:   e.SourceURL,
		Status:      string(e.Status),
		TotalPages:  e.TotalPages,
		TotalChunks: e.TotalChunks,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
