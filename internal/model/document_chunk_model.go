package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClassroomId int64           `gorm:"not null;index"`
	UnitNo      int             `gorm:"default:0"`
	ChunkIndex  int             `gorm:"not null"` // 0-based, contiguous per document
	Content     string          `gorm:"type:text"`
	Embedding   pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensions
	Metadata    datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
