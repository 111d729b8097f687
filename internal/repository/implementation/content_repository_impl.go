package implementation

import (
	"context"
	"errors"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/mapper"
	"classroom-ai-be/internal/model"
	"classroom-ai-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewContentRepository(db *gorm.DB) contract.ContentRepository {
	return &ContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *ContentRepositoryImpl) Create(ctx context.Context, record *entity.ContentRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ContentRecord, error) {
	var m model.ContentRecord
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentRepositoryImpl) FindByClassroom(ctx context.Context, classroomId int64) ([]*entity.ContentRecord, error) {
	var models []*model.ContentRecord
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomId).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContentRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ContentRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, totalPages, totalChunks int) error {
	return r.db.WithContext(ctx).
		Model(&model.ContentRecord{}).
		Where("id = ? AND status = ?", id, string(entity.ContentStatusProcessing)).
		Updates(map[string]interface{}{
			"status":       string(entity.ContentStatusCompleted),
			"total_pages":  totalPages,
			"total_chunks": totalChunks,
		}).Error
}

func (r *ContentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ContentRecord{}).Error
}

func (r *ContentRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ContentRecord{}).
		Where("id = ? AND status = ?", id, string(entity.ContentStatusProcessing)).
		Update("status", string(entity.ContentStatusFailed)).Error
}
