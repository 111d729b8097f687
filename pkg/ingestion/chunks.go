package ingestion

import (
	"github.com/google/uuid"

	"classroom-ai-be/internal/entity"
	"classroom-ai-be/pkg/utils"
)

// buildChunks splits every page unit into overlapping chunks. Chunk ordinals
// are contiguous from 0 across the whole document, assigned in page order, so
// gaps never appear even when some pages contributed nothing.
func (p *Pipeline) buildChunks(job *Job, pages []entity.PageUnit) []*entity.Chunk {
	totalPages := len(pages)
	var chunks []*entity.Chunk
	ordinal := 0

	for _, page := range pages {
		pieces := utils.SplitText(page.Text, p.deps.Cfg.ChunkSize, p.deps.Cfg.ChunkOverlap, p.deps.Cfg.ChunkMinLength)
		for _, piece := range pieces {
			chunks = append(chunks, &entity.Chunk{
				Id:          uuid.New(),
				DocumentId:  job.ContentId,
				UserId:      job.UserId,
				ClassroomId: job.ClassroomId,
				UnitNo:      job.UnitNo,
				ChunkIndex:  ordinal,
				Content:     piece,
				Metadata: entity.ChunkMetadata{
					FileName:    job.FileName,
					TotalPages:  totalPages,
					DocumentId:  job.ContentId.String(),
					PageNumber:  page.Index,
					ContentType: page.ContentType,
					ImageURL:    page.ImageURL,
					Timestamp:   page.Timestamp,
				},
			})
			ordinal++
		}
	}
	return chunks
}
