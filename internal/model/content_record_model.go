package model

import (
	"time"

	"github.com/google/uuid"
)

type ContentRecord struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClassroomId int64      `gorm:"not null;index"`
	UnitNo      int        `gorm:"default:0"`
	OriginBlog  *uuid.UUID `gorm:"type:uuid"`
	OriginWork  *uuid.UUID `gorm:"type:uuid"`
	Kind        string     `gorm:"type:varchar(16);not null"`
	FileName    string     `gorm:"type:text"`
	SourceURL   string     `gorm:"type:text"`
	Status      string     `gorm:"type:varchar(16);not null;index"`
	TotalPages  int        `gorm:"default:0"`
	TotalChunks int        `gorm:"default:0"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (ContentRecord) TableName() string {
	return "classroom_contents"
}
