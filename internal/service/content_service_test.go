package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/repository/contract"
	"classroom-ai-be/internal/repository/unitofwork"
	"classroom-ai-be/pkg/embedding"
	"classroom-ai-be/pkg/ingestion"
)

type stubRenderer struct {
	pages    int
	countErr error
}

func (s *stubRenderer) PageCount(data []byte) (int, error) {
	return s.pages, s.countErr
}

func (s *stubRenderer) RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error) {
	return nil, errors.New("not used")
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{}, s.err
}

func (s *stubEmbedder) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5, 0.5}
	}
	return out, nil
}

type stubContentRepo struct {
	created []*entity.ContentRecord
	byId    map[uuid.UUID]*entity.ContentRecord
	deleted []uuid.UUID
}

func newStubContentRepo() *stubContentRepo {
	return &stubContentRepo{byId: make(map[uuid.UUID]*entity.ContentRecord)}
}

func (s *stubContentRepo) Create(ctx context.Context, record *entity.ContentRecord) error {
	s.created = append(s.created, record)
	s.byId[record.Id] = record
	return nil
}

func (s *stubContentRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.ContentRecord, error) {
	// Mirrors the gorm implementation: a missing row is (nil, nil), not an error.
	return s.byId[id], nil
}

func (s *stubContentRepo) FindByClassroom(ctx context.Context, classroomId int64) ([]*entity.ContentRecord, error) {
	var out []*entity.ContentRecord
	for _, r := range s.byId {
		if r.ClassroomId == classroomId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.byId, id)
	return nil
}

func (s *stubContentRepo) MarkCompleted(ctx context.Context, id uuid.UUID, totalPages, totalChunks int) error {
	return nil
}

func (s *stubContentRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubChunkRepo struct {
	results []*contract.ScoredChunk
	byDoc   map[uuid.UUID][]*entity.Chunk
	deleted []uuid.UUID
}

func (s *stubChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error { return nil }
func (s *stubChunkRepo) FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.Chunk, error) {
	return s.byDoc[documentId], nil
}
func (s *stubChunkRepo) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	return int64(len(s.byDoc[documentId])), nil
}
func (s *stubChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	s.deleted = append(s.deleted, documentId)
	delete(s.byDoc, documentId)
	return nil
}
func (s *stubChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, classroomId int64, limit int, threshold float64) ([]*contract.ScoredChunk, error) {
	return s.results, nil
}

type stubUow struct {
	contentRepo *stubContentRepo
	chunkRepo   *stubChunkRepo
}

func (s *stubUow) Begin(ctx context.Context) error                       { return nil }
func (s *stubUow) Commit() error                                         { return nil }
func (s *stubUow) Rollback() error                                       { return nil }
func (s *stubUow) ContentRepository() contract.ContentRepository         { return s.contentRepo }
func (s *stubUow) ChunkRepository() contract.ChunkRepository             { return s.chunkRepo }

type stubUowFactory struct{ uow *stubUow }

func (s *stubUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return s.uow
}

func testService(t *testing.T, renderer *stubRenderer) (IContentService, *stubContentRepo) {
	t.Helper()
	repo := newStubContentRepo()
	uow := &stubUow{contentRepo: repo, chunkRepo: &stubChunkRepo{}}
	queue := ingestion.NewQueue(nil)
	t.Cleanup(func() { _ = queue.Close() })

	cfg := config.IngestionConfig{
		MaxFileSize: 1024,
		MaxPages:    10,
	}
	svc := NewContentService(&stubUowFactory{uow: uow}, queue, renderer, &stubEmbedder{}, cfg, nil)
	return svc, repo
}

// testServiceWithUow exposes both repositories for tests that cross the
// content/chunk boundary.
func testServiceWithUow(t *testing.T) (IContentService, *stubUow) {
	t.Helper()
	uow := &stubUow{
		contentRepo: newStubContentRepo(),
		chunkRepo:   &stubChunkRepo{byDoc: make(map[uuid.UUID][]*entity.Chunk)},
	}
	queue := ingestion.NewQueue(nil)
	t.Cleanup(func() { _ = queue.Close() })

	cfg := config.IngestionConfig{
		MaxFileSize: 1024,
		MaxPages:    10,
	}
	svc := NewContentService(&stubUowFactory{uow: uow}, queue, &stubRenderer{}, &stubEmbedder{}, cfg, nil)
	return svc, uow
}

func validMeta() UploadMeta {
	return UploadMeta{ClassroomId: 7, UnitNo: 1}
}

func TestUploadDocumentRejectsEmptyPayload(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 3})

	_, err := svc.UploadDocument(context.Background(), uuid.New(), validMeta(), "a.pdf", "application/pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestUploadDocumentRejectsOversizedFile(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 3})

	data := bytes.Repeat([]byte("x"), 2048)
	_, err := svc.UploadDocument(context.Background(), uuid.New(), validMeta(), "a.pdf", "application/pdf", data)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 3})

	_, err := svc.UploadDocument(context.Background(), uuid.New(), validMeta(), "a.docx", "application/msword", []byte("data"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadDocumentRejectsCorruptFile(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{countErr: errors.New("bad header")})

	_, err := svc.UploadDocument(context.Background(), uuid.New(), validMeta(), "a.pdf", "application/pdf", []byte("junk"))
	assert.ErrorIs(t, err, ErrCorruptSource)
}

func TestUploadDocumentRejectsTooManyPages(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 50})

	_, err := svc.UploadDocument(context.Background(), uuid.New(), validMeta(), "a.pdf", "application/pdf", []byte("data"))
	assert.ErrorIs(t, err, ErrTooManyPages)
}

func TestUploadDocumentCreatesProcessingRecord(t *testing.T) {
	svc, repo := testService(t, &stubRenderer{pages: 3})

	userId := uuid.New()
	res, err := svc.UploadDocument(context.Background(), userId, validMeta(), "lecture.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, string(entity.ContentStatusProcessing), res.Status)

	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.Equal(t, res.Id, record.Id)
	assert.Equal(t, userId, record.UserId)
	assert.Equal(t, int64(7), record.ClassroomId)
	assert.Equal(t, entity.ContentKindDocument, record.Kind)
	assert.Equal(t, entity.ContentStatusProcessing, record.Status)
}

func TestUploadVideoAcceptsByExtension(t *testing.T) {
	svc, repo := testService(t, &stubRenderer{pages: 0})

	_, err := svc.UploadVideo(context.Background(), uuid.New(), validMeta(), "talk.mp4", "application/octet-stream", []byte("vid"))
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, entity.ContentKindVideo, repo.created[0].Kind)
}

func TestSubmitYoutubeValidatesURL(t *testing.T) {
	svc, repo := testService(t, &stubRenderer{pages: 0})

	_, err := svc.SubmitYoutube(context.Background(), uuid.New(), validMeta(), "https://example.com/watch?v=abc")
	assert.ErrorIs(t, err, ErrInvalidVideoURL)

	_, err = svc.SubmitYoutube(context.Background(), uuid.New(), validMeta(), "ftp://youtube.com/watch?v=abc")
	assert.ErrorIs(t, err, ErrInvalidVideoURL)

	res, err := svc.SubmitYoutube(context.Background(), uuid.New(), validMeta(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ContentStatusProcessing), res.Status)
	require.Len(t, repo.created, 1)
	assert.Equal(t, entity.ContentKindYoutube, repo.created[0].Kind)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", repo.created[0].SourceURL)
}

func TestStatusReturnsRecordState(t *testing.T) {
	svc, repo := testService(t, &stubRenderer{pages: 0})

	now := time.Now()
	record := &entity.ContentRecord{
		Id:          uuid.New(),
		Kind:        entity.ContentKindDocument,
		FileName:    "lecture.pdf",
		Status:      entity.ContentStatusCompleted,
		TotalPages:  5,
		TotalChunks: 12,
		CreatedAt:   now,
	}
	repo.byId[record.Id] = record

	res, err := svc.Status(context.Background(), record.Id)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, 12, res.TotalChunks)
}

func TestStatusUnknownIdIsNotFound(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 0})

	// The repository reports a missing row as (nil, nil); Status must turn
	// that into a not-found error instead of dereferencing the nil record.
	res, err := svc.Status(context.Background(), uuid.New())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestListByClassroomOnlyReturnsThatClassroom(t *testing.T) {
	svc, uow := testServiceWithUow(t)

	for _, classroomId := range []int64{7, 7, 9} {
		id := uuid.New()
		uow.contentRepo.byId[id] = &entity.ContentRecord{
			Id:          id,
			ClassroomId: classroomId,
			Kind:        entity.ContentKindDocument,
			Status:      entity.ContentStatusCompleted,
		}
	}

	items, err := svc.ListByClassroom(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.ListByClassroom(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestChunksReturnsPersistedChunks(t *testing.T) {
	svc, uow := testServiceWithUow(t)

	id := uuid.New()
	uow.contentRepo.byId[id] = &entity.ContentRecord{
		Id:     id,
		Kind:   entity.ContentKindVideo,
		Status: entity.ContentStatusCompleted,
	}
	ts := 8.0
	uow.chunkRepo.byDoc[id] = []*entity.Chunk{
		{Id: uuid.New(), DocumentId: id, ChunkIndex: 0, Content: "welcome to the lecture", Metadata: entity.ChunkMetadata{PageNumber: 1, ContentType: entity.PageContentTypeTranscript}},
		{Id: uuid.New(), DocumentId: id, ChunkIndex: 1, Content: "Frame at 8 seconds.", Metadata: entity.ChunkMetadata{PageNumber: 2, ContentType: entity.PageContentTypeFrame, Timestamp: &ts}},
	}

	items, err := svc.Chunks(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].ChunkIndex)
	assert.Equal(t, entity.PageContentTypeTranscript, items[0].ContentType)
	require.NotNil(t, items[1].Timestamp)
	assert.Equal(t, 8.0, *items[1].Timestamp)
}

func TestChunksUnknownIdIsNotFound(t *testing.T) {
	svc, _ := testServiceWithUow(t)

	_, err := svc.Chunks(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDeleteRemovesChunksAndRecord(t *testing.T) {
	svc, uow := testServiceWithUow(t)

	id := uuid.New()
	uow.contentRepo.byId[id] = &entity.ContentRecord{
		Id:     id,
		Kind:   entity.ContentKindDocument,
		Status: entity.ContentStatusCompleted,
	}
	uow.chunkRepo.byDoc[id] = []*entity.Chunk{
		{Id: uuid.New(), DocumentId: id, ChunkIndex: 0, Content: "a"},
		{Id: uuid.New(), DocumentId: id, ChunkIndex: 1, Content: "b"},
		{Id: uuid.New(), DocumentId: id, ChunkIndex: 2, Content: "c"},
	}

	res, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, res.Id)
	assert.Equal(t, int64(3), res.ChunksRemoved)

	assert.Contains(t, uow.chunkRepo.deleted, id)
	assert.Contains(t, uow.contentRepo.deleted, id)

	_, err = svc.Status(context.Background(), id)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDeleteUnknownIdIsNotFound(t *testing.T) {
	svc, uow := testServiceWithUow(t)

	_, err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Empty(t, uow.chunkRepo.deleted)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, _ := testService(t, &stubRenderer{pages: 0})

	_, err := svc.Search(context.Background(), 7, "   ", 10)
	assert.Error(t, err)
}
