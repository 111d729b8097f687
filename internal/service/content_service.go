package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/dto"
	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/pkg/logger"
	"classroom-ai-be/internal/pkg/serverutils"
	"classroom-ai-be/internal/repository/unitofwork"
	"classroom-ai-be/pkg/embedding"
	"classroom-ai-be/pkg/ingestion"
	"classroom-ai-be/pkg/pdf"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrUnsupportedType = serverutils.NewAPIError(http.StatusUnsupportedMediaType, "unsupported content type")
	ErrFileTooLarge    = serverutils.NewAPIError(http.StatusRequestEntityTooLarge, "file exceeds the maximum allowed size")
	ErrEmptyPayload    = serverutils.NewAPIError(http.StatusBadRequest, "uploaded file is empty")
	ErrTooManyPages    = serverutils.NewAPIError(http.StatusUnprocessableEntity, "document exceeds the maximum page count")
	ErrCorruptSource   = serverutils.NewAPIError(http.StatusUnprocessableEntity, "file could not be parsed")
	ErrInvalidVideoURL = serverutils.NewAPIError(http.StatusBadRequest, "unsupported video url")
	ErrContentNotFound = serverutils.NewAPIError(http.StatusNotFound, "content not found")
)

const searchTaskType = "RETRIEVAL_QUERY"

// UploadMeta carries the classroom placement shared by every upload variant.
type UploadMeta struct {
	ClassroomId int64
	UnitNo      int
	OriginBlog  *uuid.UUID
	OriginWork  *uuid.UUID
}

type IContentService interface {
	UploadDocument(ctx context.Context, userId uuid.UUID, meta UploadMeta, fileName, contentType string, data []byte) (*dto.UploadContentResponse, error)
	UploadVideo(ctx context.Context, userId uuid.UUID, meta UploadMeta, fileName, contentType string, data []byte) (*dto.UploadContentResponse, error)
	SubmitYoutube(ctx context.Context, userId uuid.UUID, meta UploadMeta, url string) (*dto.UploadContentResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.ContentStatusResponse, error)
	ListByClassroom(ctx context.Context, classroomId int64) ([]*dto.ContentStatusResponse, error)
	Chunks(ctx context.Context, id uuid.UUID) ([]*dto.ContentChunkItem, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteContentResponse, error)
	Search(ctx context.Context, classroomId int64, query string, limit int) ([]*dto.SearchResultItem, error)
}

type contentService struct {
	uowFactory        unitofwork.RepositoryFactory
	queue             *ingestion.Queue
	renderer          pdf.Renderer
	embeddingProvider embedding.EmbeddingProvider
	statusCache       *cache.Cache
	cfg               config.IngestionConfig
	log               logger.ILogger
}

func NewContentService(
	uowFactory unitofwork.RepositoryFactory,
	queue *ingestion.Queue,
	renderer pdf.Renderer,
	embeddingProvider embedding.EmbeddingProvider,
	cfg config.IngestionConfig,
	log logger.ILogger,
) IContentService {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &contentService{
		uowFactory:        uowFactory,
		queue:             queue,
		renderer:          renderer,
		embeddingProvider: embeddingProvider,
		statusCache:       cache.New(30*time.Second, 5*time.Minute),
		cfg:               cfg,
		log:               log,
	}
}

// UploadDocument validates a PDF upload synchronously, persists a
// "processing" record and enqueues the job. The 202-style response carries
// the id the client polls.
func (s *contentService) UploadDocument(ctx context.Context, userId uuid.UUID, meta UploadMeta, fileName, contentType string, data []byte) (*dto.UploadContentResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !isPDF(fileName, contentType) {
		return nil, ErrUnsupportedType
	}

	pageCount, err := s.renderer.PageCount(data)
	if err != nil {
		return nil, ErrCorruptSource
	}
	if pageCount == 0 {
		return nil, ErrCorruptSource
	}
	if s.cfg.MaxPages > 0 && pageCount > s.cfg.MaxPages {
		return nil, ErrTooManyPages
	}

	return s.acceptJob(ctx, userId, meta, &ingestion.Job{
		Kind:        ingestion.JobKindDocument,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}, entity.ContentKindDocument)
}

func (s *contentService) UploadVideo(ctx context.Context, userId uuid.UUID, meta UploadMeta, fileName, contentType string, data []byte) (*dto.UploadContentResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !isVideo(fileName, contentType) {
		return nil, ErrUnsupportedType
	}

	return s.acceptJob(ctx, userId, meta, &ingestion.Job{
		Kind:        ingestion.JobKindVideo,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}, entity.ContentKindVideo)
}

func (s *contentService) SubmitYoutube(ctx context.Context, userId uuid.UUID, meta UploadMeta, url string) (*dto.UploadContentResponse, error) {
	if !isYoutubeURL(url) {
		return nil, ErrInvalidVideoURL
	}

	return s.acceptJob(ctx, userId, meta, &ingestion.Job{
		Kind:      ingestion.JobKindYoutube,
		RemoteURL: url,
	}, entity.ContentKindYoutube)
}

func (s *contentService) acceptJob(ctx context.Context, userId uuid.UUID, meta UploadMeta, job *ingestion.Job, kind entity.ContentKind) (*dto.UploadContentResponse, error) {
	id := uuid.New()

	record := &entity.ContentRecord{
		Id:          id,
		UserId:      userId,
		ClassroomId: meta.ClassroomId,
		UnitNo:      meta.UnitNo,
		OriginBlog:  meta.OriginBlog,
		OriginWork:  meta.OriginWork,
		Kind:        kind,
		FileName:    job.FileName,
		SourceURL:   job.RemoteURL,
		Status:      entity.ContentStatusProcessing,
		CreatedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create content record: %w", err)
	}

	job.ContentId = id
	job.UserId = userId
	job.ClassroomId = meta.ClassroomId
	job.UnitNo = meta.UnitNo
	job.OriginBlog = meta.OriginBlog
	job.OriginWork = meta.OriginWork

	if err := s.queue.Enqueue(ctx, job); err != nil {
		// The record stays "processing"; a re-upload creates a fresh id.
		s.log.Error("content_service", "Failed to enqueue job", map[string]interface{}{
			"content_id": id.String(),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("enqueue ingestion job: %w", err)
	}

	s.log.Info("content_service", "Job accepted", map[string]interface{}{
		"content_id": id.String(),
		"kind":       string(kind),
	})

	return &dto.UploadContentResponse{
		Id:     id,
		Status: string(entity.ContentStatusProcessing),
	}, nil
}

// Status reads the record's terminal state. Terminal responses are cached
// briefly since clients poll this endpoint.
func (s *contentService) Status(ctx context.Context, id uuid.UUID) (*dto.ContentStatusResponse, error) {
	if cached, found := s.statusCache.Get(id.String()); found {
		return cached.(*dto.ContentStatusResponse), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRepository().FindById(ctx, id)
	if err != nil || record == nil {
		return nil, ErrContentNotFound
	}

	res := &dto.ContentStatusResponse{
		Id:          record.Id,
		Kind:        string(record.Kind),
		FileName:    record.FileName,
		SourceURL:   record.SourceURL,
		Status:      string(record.Status),
		TotalPages:  record.TotalPages,
		TotalChunks: record.TotalChunks,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}

	if record.IsTerminal() {
		s.statusCache.Set(id.String(), res, cache.DefaultExpiration)
	}
	return res, nil
}

// ListByClassroom returns every record in one classroom, newest first.
func (s *contentService) ListByClassroom(ctx context.Context, classroomId int64) ([]*dto.ContentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.ContentRepository().FindByClassroom(ctx, classroomId)
	if err != nil {
		return nil, fmt.Errorf("list classroom content: %w", err)
	}

	items := make([]*dto.ContentStatusResponse, 0, len(records))
	for _, r := range records {
		items = append(items, &dto.ContentStatusResponse{
			Id:          r.Id,
			Kind:        string(r.Kind),
			FileName:    r.FileName,
			SourceURL:   r.SourceURL,
			Status:      string(r.Status),
			TotalPages:  r.TotalPages,
			TotalChunks: r.TotalChunks,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return items, nil
}

// Chunks returns one record's persisted chunks in ordinal order.
func (s *contentService) Chunks(ctx context.Context, id uuid.UUID) ([]*dto.ContentChunkItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRepository().FindById(ctx, id)
	if err != nil || record == nil {
		return nil, ErrContentNotFound
	}

	chunks, err := uow.ChunkRepository().FindByDocumentId(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load content chunks: %w", err)
	}

	items := make([]*dto.ContentChunkItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, &dto.ContentChunkItem{
			Id:          c.Id,
			ChunkIndex:  c.ChunkIndex,
			Content:     c.Content,
			PageNumber:  c.Metadata.PageNumber,
			ContentType: c.Metadata.ContentType,
			ImageURL:    c.Metadata.ImageURL,
			Timestamp:   c.Metadata.Timestamp,
		})
	}
	return items, nil
}

// Delete removes a record and its chunks inside one transaction.
func (s *contentService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteContentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRepository().FindById(ctx, id)
	if err != nil || record == nil {
		return nil, ErrContentNotFound
	}

	removed, err := uow.ChunkRepository().CountByDocumentId(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count content chunks: %w", err)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin delete transaction: %w", err)
	}
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete content chunks: %w", err)
	}
	if err := uow.ContentRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete content record: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete transaction: %w", err)
	}

	s.statusCache.Delete(id.String())

	s.log.Info("content_service", "Content deleted", map[string]interface{}{
		"content_id":     id.String(),
		"chunks_removed": removed,
	})

	return &dto.DeleteContentResponse{
		Id:            id,
		ChunksRemoved: removed,
	}, nil
}

// Search embeds the query and runs a cosine similarity search over one
// classroom's chunks.
func (s *contentService) Search(ctx context.Context, classroomId int64, query string, limit int) ([]*dto.SearchResultItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, serverutils.NewAPIError(http.StatusBadRequest, "query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	vectors, err := s.embeddingProvider.GenerateBatch([]string{query}, searchTaskType)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed search query: expected 1 vector, got %d", len(vectors))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ChunkRepository().SearchSimilar(ctx, vectors[0], classroomId, limit, 0.3)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]*dto.SearchResultItem, 0, len(scored))
	for _, sc := range scored {
		results = append(results, &dto.SearchResultItem{
			DocumentId:  sc.Chunk.DocumentId,
			FileName:    sc.Chunk.Metadata.FileName,
			Content:     sc.Chunk.Content,
			Similarity:  sc.Similarity,
			PageNumber:  sc.Chunk.Metadata.PageNumber,
			ContentType: sc.Chunk.Metadata.ContentType,
			ImageURL:    sc.Chunk.Metadata.ImageURL,
			Timestamp:   sc.Chunk.Metadata.Timestamp,
		})
	}
	return results, nil
}

func isPDF(fileName, contentType string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func isVideo(fileName, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi":
		return true
	}
	return false
}

func isYoutubeURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return strings.Contains(lower, "youtube.com/") || strings.Contains(lower, "youtu.be/")
}
