package mapper

import (
	"encoding/json"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(e *model.DocumentChunk) *entity.Chunk {
	if e == nil {
		return nil
	}

	var meta entity.ChunkMetadata
	if len(e.Metadata) > 0 {
		// Metadata was written by us; a decode failure just leaves it empty.
		_ = json.Unmarshal(e.Metadata, &meta)
	}

	return &entity.Chunk{
		Id:          e.Id,
		DocumentId:  e.DocumentId,
		UserId:      e.UserId,
		ClassroomId: e.ClassroomId,
		UnitNo:      e.UnitNo,
		ChunkIndex:  e.ChunkIndex,
		Content:     e.Content,
		Embedding:   e.Embedding.Slice(),
		Metadata:    meta,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(e *entity.Chunk) *model.DocumentChunk {
	if e == nil {
		return nil
	}

	metaJson, _ := json.Marshal(e.Metadata)

	return &model.DocumentChunk{
		Id:          e.Id,
		DocumentId:  e.DocumentId,
		UserId:      e.UserId,
		ClassroomId: e.ClassroomId,
		UnitNo:      e.UnitNo,
		ChunkIndex:  e.ChunkIndex,
		Content:     e.Content,
		Embedding:   pgvector.NewVector(e.Embedding),
		Metadata:    datatypes.JSON(metaJson),
		CreatedAt:   e.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, e := range chunks {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, e := range chunks {
		models[i] = m.ToModel(e)
	}
	return models
}
