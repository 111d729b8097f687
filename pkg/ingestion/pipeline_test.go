package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/repository/contract"
	"classroom-ai-be/internal/repository/unitofwork"
	"classroom-ai-be/pkg/embedding"
	"classroom-ai-be/pkg/llm"
	"classroom-ai-be/pkg/media"
	"classroom-ai-be/pkg/ocr"
	"classroom-ai-be/pkg/ratelimit"
	"classroom-ai-be/pkg/speech"
)

// --- fakes ---

type fakeRenderer struct {
	pages     int
	countErr  error
	renderErr error
}

func (f *fakeRenderer) PageCount(data []byte) (int, error) {
	return f.pages, f.countErr
}

func (f *fakeRenderer) RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	// Real PNG bytes: the enrichment stage decodes and re-encodes the image.
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type fakeAnalyzer struct {
	analyze func(pageRange string) (*ocr.Result, error)
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, data []byte, pageRange string) (*ocr.Result, error) {
	return f.analyze(pageRange)
}

type fakeDescriber struct {
	description string
	err         error
}

func (f *fakeDescriber) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	return f.description, f.err
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.summary, f.err
}

func (f *fakeSummarizer) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.summary, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{}, nil
}

func (f *fakeEmbedder) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type panickingEmbedder struct{}

func (panickingEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	panic("embedding client crashed")
}

func (panickingEmbedder) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	panic("embedding client crashed")
}

type fakeTranscriber struct {
	segments []speech.Segment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) ([]speech.Segment, error) {
	return f.segments, f.err
}

// fakeMedia writes real uniform-gray JPEGs so frame decoding and motion
// selection run against actual files.
type fakeMedia struct {
	frameLevels []uint8
	frameTimes  []float64
	audioErr    error
	sampleErr   error
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if f.audioErr != nil {
		return "", f.audioErr
	}
	path := videoPath + ".mp3"
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeMedia) SampleFrames(ctx context.Context, videoPath string, interval float64, outDir string) ([]media.Frame, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	frames := make([]media.Frame, 0, len(f.frameLevels))
	for i, level := range f.frameLevels {
		img := image.NewGray(image.Rect(0, 0, 16, 16))
		for p := range img.Pix {
			img.Pix[p] = level
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, fmt.Sprintf("frame_%03d.jpg", i))
		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return nil, err
		}
		frames = append(frames, media.Frame{Timestamp: f.frameTimes[i], Path: path})
	}
	return frames, nil
}

type fakeStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return "https://blob.test/" + bucket + "/" + key, nil
}

type fakeContentRepo struct {
	mu        sync.Mutex
	completed map[uuid.UUID][2]int
	failed    map[uuid.UUID]bool
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		completed: make(map[uuid.UUID][2]int),
		failed:    make(map[uuid.UUID]bool),
	}
}

func (f *fakeContentRepo) Create(ctx context.Context, record *entity.ContentRecord) error {
	return nil
}

func (f *fakeContentRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.ContentRecord, error) {
	return nil, errors.New("not found")
}

func (f *fakeContentRepo) FindByClassroom(ctx context.Context, classroomId int64) ([]*entity.ContentRecord, error) {
	return nil, nil
}

func (f *fakeContentRepo) MarkCompleted(ctx context.Context, id uuid.UUID, totalPages, totalChunks int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = [2]int{totalPages, totalChunks}
	return nil
}

func (f *fakeContentRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = true
	return nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks []*entity.Chunk
	err    error
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.chunks = append(f.chunks, chunks...)
	f.mu.Unlock()
	return nil
}

func (f *fakeChunkRepo) FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeChunkRepo) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	return int64(len(f.chunks)), nil
}

func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, classroomId int64, limit int, threshold float64) ([]*contract.ScoredChunk, error) {
	return nil, nil
}

type fakeUow struct {
	contentRepo *fakeContentRepo
	chunkRepo   *fakeChunkRepo
	begun       int
	committed   int
	rolledBack  int
}

func (f *fakeUow) Begin(ctx context.Context) error { f.begun++; return nil }
func (f *fakeUow) Commit() error                   { f.committed++; return nil }
func (f *fakeUow) Rollback() error                 { f.rolledBack++; return nil }

func (f *fakeUow) ContentRepository() contract.ContentRepository { return f.contentRepo }
func (f *fakeUow) ChunkRepository() contract.ChunkRepository     { return f.chunkRepo }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// --- helpers ---

func testConfig() config.IngestionConfig {
	return config.IngestionConfig{
		ChunkSize:        1500,
		ChunkOverlap:     150,
		ChunkMinLength:   5,
		EmbedBatchSize:   16,
		OCRBatchPages:    2,
		DiagramMaxWidth:  1024,
		DiagramMaxHeight: 1024,
		DiagramQuality:   80,
		DiagramImageArea: 0.4,
		DiagramTextArea:  0.2,
		FrameInterval:    4,
		MotionThreshold:  12,
	}
}

// threePageAnalyzer answers batched OCR calls for a 3-page document. The
// second page is mostly one big figure with barely any text, which should
// trip the diagram heuristic.
func threePageAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		analyze: func(pageRange string) (*ocr.Result, error) {
			switch pageRange {
			case "1-2":
				return &ocr.Result{
					Pages: []ocr.Page{
						{
							Number: 1, Width: 10, Height: 10,
							Lines: []ocr.Line{
								{Content: "introduction to networks lecture one", Box: ocr.BoundingBox{W: 8, H: 1}},
							},
						},
						{
							Number: 2, Width: 10, Height: 10,
							Lines: []ocr.Line{
								{Content: "figure 1 topology", Box: ocr.BoundingBox{W: 2, H: 0.5}},
							},
						},
					},
					Figures: []ocr.Figure{
						{PageNumber: 2, Box: ocr.BoundingBox{W: 8, H: 7}},
					},
				}, nil
			case "3-3":
				return &ocr.Result{
					Pages: []ocr.Page{
						{
							Number: 1, Width: 10, Height: 10,
							Lines: []ocr.Line{
								{Content: "summary of the routing chapter here", Box: ocr.BoundingBox{W: 8, H: 1}},
							},
						},
					},
				}, nil
			}
			return nil, fmt.Errorf("unexpected page range %q", pageRange)
		},
	}
}

func newTestPipeline(deps Deps) *Pipeline {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(nil, nil)
	}
	if deps.Cfg.ChunkSize == 0 {
		deps.Cfg = testConfig()
	}
	return NewPipeline(deps)
}

func documentJob() *Job {
	return &Job{
		ContentId:   uuid.New(),
		UserId:      uuid.New(),
		ClassroomId: 42,
		UnitNo:      1,
		Kind:        JobKindDocument,
		FileName:    "lecture.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-fake"),
	}
}

func videoJob() *Job {
	return &Job{
		ContentId:   uuid.New(),
		UserId:      uuid.New(),
		ClassroomId: 42,
		UnitNo:      1,
		Kind:        JobKindVideo,
		FileName:    "talk.mp4",
		ContentType: "video/mp4",
		Data:        []byte("fake-mp4-payload"),
	}
}

// frameAnalyzer answers the single-frame OCR calls made by the video branch.
func frameAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		analyze: func(pageRange string) (*ocr.Result, error) {
			return &ocr.Result{
				Pages: []ocr.Page{
					{
						Number: 1, Width: 16, Height: 16,
						Lines: []ocr.Line{
							{Content: "routing table slide", Box: ocr.BoundingBox{W: 10, H: 1}},
						},
					},
				},
			}, nil
		},
	}
}

// --- tests ---

func TestProcessDocumentEnrichesDiagramPage(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}
	store := &fakeStore{}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Describer:  &fakeDescriber{description: "A network topology diagram with three routers."},
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      store,
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 3, result.TotalChunks)

	// All-or-nothing persistence happened inside one transaction.
	assert.Equal(t, 1, uow.begun)
	assert.Equal(t, 1, uow.committed)
	assert.Zero(t, uow.rolledBack)

	counts, ok := uow.contentRepo.completed[job.ContentId]
	require.True(t, ok, "record must be marked completed")
	assert.Equal(t, [2]int{3, 3}, counts)

	chunks := uow.chunkRepo.chunks
	require.Len(t, chunks, 3)

	// Ordinals are contiguous from 0 in page order.
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, i+1, c.Metadata.PageNumber)
		assert.NotEmpty(t, c.Embedding)
	}

	// Page 2 tripped the diagram heuristic.
	diagram := chunks[1]
	assert.Equal(t, entity.PageContentTypeTextDiagram, diagram.Metadata.ContentType)
	assert.Contains(t, diagram.Metadata.ImageURL, "diagram_page_2.jpeg")
	assert.Contains(t, diagram.Content, "[Diagram]")
	assert.Contains(t, diagram.Content, "network topology")

	// Pages 1 and 3 stayed plain text.
	assert.Equal(t, entity.PageContentTypeText, chunks[0].Metadata.ContentType)
	assert.Empty(t, chunks[0].Metadata.ImageURL)
	assert.Equal(t, entity.PageContentTypeText, chunks[2].Metadata.ContentType)

	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], job.ContentId.String()+"/"))
}

func TestProcessDocumentVisionFailureDegradesToPlaceholder(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Describer:  &fakeDescriber{err: errors.New("vision quota exhausted")},
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	result := p.Process(context.Background(), documentJob())

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	require.Len(t, uow.chunkRepo.chunks, 3)

	diagram := uow.chunkRepo.chunks[1]
	assert.Equal(t, entity.PageContentTypeTextDiagram, diagram.Metadata.ContentType)
	assert.Contains(t, diagram.Content, "Diagram description not available.")
	assert.NotEmpty(t, diagram.Metadata.ImageURL, "image survives even when description fails")
	assert.NotEmpty(t, result.Diagnostics)
}

func TestProcessDocumentRasterizeFailureDropsDiagram(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Describer:  &fakeDescriber{description: "unused"},
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 3, renderErr: errors.New("render failed")},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	result := p.Process(context.Background(), documentJob())

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	require.Len(t, uow.chunkRepo.chunks, 3)

	// The would-be diagram page fell back to a plain text page.
	page2 := uow.chunkRepo.chunks[1]
	assert.Equal(t, entity.PageContentTypeText, page2.Metadata.ContentType)
	assert.Empty(t, page2.Metadata.ImageURL)
	assert.NotEmpty(t, result.Diagnostics)
}

func TestProcessDocumentSummarizerFailureKeepsOriginalText(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Summarizer: &fakeSummarizer{err: errors.New("model unavailable")},
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	result := p.Process(context.Background(), documentJob())

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	require.Len(t, uow.chunkRepo.chunks, 3)
	assert.Contains(t, uow.chunkRepo.chunks[0].Content, "introduction to networks")

	var summarizeDiags int
	for _, d := range result.Diagnostics {
		if d.Stage == StageSummarize {
			summarizeDiags++
		}
	}
	assert.Equal(t, 3, summarizeDiags)
}

func TestProcessDocumentEmbeddingFailureIsFatal(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Embedder:   &fakeEmbedder{err: errors.New("embedding service down")},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusFailed, result.Status)
	assert.True(t, uow.contentRepo.failed[job.ContentId])
	assert.Empty(t, uow.chunkRepo.chunks, "no chunks may be persisted on a fatal failure")
	assert.Contains(t, result.Error, "embedding")
}

func TestProcessDocumentFailedBatchLeavesEmptySlots(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	// First batch fails entirely; only page 3 yields text.
	analyzer := &fakeAnalyzer{
		analyze: func(pageRange string) (*ocr.Result, error) {
			if pageRange == "1-2" {
				return nil, errors.New("service unavailable")
			}
			return &ocr.Result{
				Pages: []ocr.Page{
					{
						Number: 1, Width: 10, Height: 10,
						Lines: []ocr.Line{
							{Content: "only the third page survived analysis", Box: ocr.BoundingBox{W: 8, H: 1}},
						},
					},
				},
			}, nil
		},
	}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   analyzer,
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	assert.Equal(t, 3, result.TotalPages, "failed pages still count toward the total")

	require.Len(t, uow.chunkRepo.chunks, 1)
	assert.Equal(t, 3, uow.chunkRepo.chunks[0].Metadata.PageNumber)
	assert.Equal(t, 0, uow.chunkRepo.chunks[0].ChunkIndex)
	assert.NotEmpty(t, result.Diagnostics)
}

func TestProcessDocumentNoContentIsFatal(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	analyzer := &fakeAnalyzer{
		analyze: func(pageRange string) (*ocr.Result, error) {
			return nil, errors.New("service unavailable")
		},
	}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   analyzer,
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 2},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusFailed, result.Status)
	assert.True(t, uow.contentRepo.failed[job.ContentId])
}

func TestProcessCorruptDocumentIsFatal(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{countErr: errors.New("not a pdf")},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusFailed, result.Status)
	assert.True(t, uow.contentRepo.failed[job.ContentId])
}

func TestProcessUnknownKindIsFatal(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Embedder:   &fakeEmbedder{},
		Renderer:   &fakeRenderer{pages: 1},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	job.Kind = JobKind("unknown")
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusFailed, result.Status)
	assert.True(t, uow.contentRepo.failed[job.ContentId])
}

func TestProcessStagePanicMarksJobFailed(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:     "content",
		Analyzer:   threePageAnalyzer(),
		Embedder:   panickingEmbedder{},
		Renderer:   &fakeRenderer{pages: 3},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := documentJob()
	var result *Result
	require.NotPanics(t, func() {
		result = p.Process(context.Background(), job)
	})

	require.Equal(t, entity.ContentStatusFailed, result.Status)
	assert.True(t, uow.contentRepo.failed[job.ContentId], "a panicking stage must not leave the record at processing")
	assert.Empty(t, uow.chunkRepo.chunks)
	assert.Contains(t, result.Error, "panicked")
}

func TestProcessVideoMergesFramesAndTranscript(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}
	store := &fakeStore{}

	// Four sampled frames: the second barely differs from the first, so
	// motion selection keeps frames at 0s, 8s and 12s.
	p := newTestPipeline(Deps{
		Bucket:    "content",
		Analyzer:  frameAnalyzer(),
		Describer: &fakeDescriber{description: "A slide with a routing table."},
		Embedder:  &fakeEmbedder{},
		Transcriber: &fakeTranscriber{segments: []speech.Segment{
			{Start: 2.5, End: 6, Text: " welcome to the routing lecture "},
			{Start: 10.5, End: 14, Text: "every hop rewrites the frame header"},
		}},
		Media:      &fakeMedia{frameLevels: []uint8{10, 12, 200, 240}, frameTimes: []float64{0, 4, 8, 12}},
		Store:      store,
		UowFactory: &fakeUowFactory{uow: uow},
	})

	job := videoJob()
	result := p.Process(context.Background(), job)

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	assert.Equal(t, 5, result.TotalPages)

	chunks := uow.chunkRepo.chunks
	require.Len(t, chunks, 5)

	// The merged timeline interleaves both branches in timestamp order.
	wantTypes := []string{
		entity.PageContentTypeFrame,
		entity.PageContentTypeTranscript,
		entity.PageContentTypeFrame,
		entity.PageContentTypeTranscript,
		entity.PageContentTypeFrame,
	}
	prev := -1.0
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, wantTypes[i], c.Metadata.ContentType)
		require.NotNil(t, c.Metadata.Timestamp, "every video chunk carries a timestamp")
		assert.GreaterOrEqual(t, *c.Metadata.Timestamp, prev)
		prev = *c.Metadata.Timestamp
	}

	for _, i := range []int{0, 2, 4} {
		assert.Contains(t, chunks[i].Content, "Visual: A slide with a routing table.")
		assert.Contains(t, chunks[i].Content, "On-screen text: routing table slide")
		assert.Contains(t, chunks[i].Metadata.ImageURL, job.ContentId.String()+"/frame_")
	}
	assert.Contains(t, chunks[1].Content, "welcome to the routing lecture")
	assert.Empty(t, chunks[1].Metadata.ImageURL)

	require.Len(t, store.keys, 3, "one upload per key frame")

	counts, ok := uow.contentRepo.completed[job.ContentId]
	require.True(t, ok)
	assert.Equal(t, [2]int{5, 5}, counts)
}

func TestProcessVideoTranscriptSurvivesFrameFailure(t *testing.T) {
	uow := &fakeUow{contentRepo: newFakeContentRepo(), chunkRepo: &fakeChunkRepo{}}

	p := newTestPipeline(Deps{
		Bucket:    "content",
		Analyzer:  frameAnalyzer(),
		Describer: &fakeDescriber{description: "unused"},
		Embedder:  &fakeEmbedder{},
		Transcriber: &fakeTranscriber{segments: []speech.Segment{
			{Start: 0, End: 4, Text: "the only surviving branch is audio"},
		}},
		Media:      &fakeMedia{sampleErr: errors.New("ffmpeg exited 1")},
		Store:      &fakeStore{},
		UowFactory: &fakeUowFactory{uow: uow},
	})

	result := p.Process(context.Background(), videoJob())

	require.Equal(t, entity.ContentStatusCompleted, result.Status)
	require.Len(t, uow.chunkRepo.chunks, 1)
	assert.Equal(t, entity.PageContentTypeTranscript, uow.chunkRepo.chunks[0].Metadata.ContentType)
	assert.NotEmpty(t, result.Diagnostics)
}
