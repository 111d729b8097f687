package ingestion

import (
	"context"
	"errors"
	"fmt"

	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/entity"
	"classroom-ai-be/internal/pkg/logger"
	"classroom-ai-be/internal/repository/unitofwork"
	"classroom-ai-be/pkg/blob"
	"classroom-ai-be/pkg/embedding"
	"classroom-ai-be/pkg/events"
	"classroom-ai-be/pkg/llm"
	"classroom-ai-be/pkg/media"
	"classroom-ai-be/pkg/ocr"
	"classroom-ai-be/pkg/pdf"
	"classroom-ai-be/pkg/ratelimit"
	"classroom-ai-be/pkg/speech"
	"classroom-ai-be/pkg/vision"
)

// Rate limiter service names. Every external call a stage makes goes through
// one of these budgets.
const (
	ServiceOCR        = "ocr"
	ServiceVision     = "vision"
	ServiceSummarize  = "summarize"
	ServiceEmbedding  = "embedding"
	ServiceTranscribe = "transcribe"
)

// EventPublisher is the slice of the NATS publisher the pipeline needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Deps carries everything a Pipeline needs. Describer, Summarizer,
// Transcriber and Publisher may be nil: those capabilities degrade instead of
// failing the job.
type Deps struct {
	Cfg         config.IngestionConfig
	Bucket      string
	Limiter     *ratelimit.Limiter
	Analyzer    ocr.DocumentAnalyzer
	Describer   vision.Describer
	Summarizer  llm.LLMProvider
	Embedder    embedding.EmbeddingProvider
	Transcriber speech.Transcriber
	Renderer    pdf.Renderer
	Media       media.Processor
	Downloader  media.Downloader
	Store       blob.ObjectStore
	UowFactory  unitofwork.RepositoryFactory
	Publisher   EventPublisher
	Log         logger.ILogger
}

// Pipeline runs one job through extraction, enrichment, chunking,
// summarization, embedding and persistence. Stages are sequential relative to
// each other and fan out internally; page/temporal order is reconstructed by
// index-addressed writes or a post-join sort, never by completion order.
type Pipeline struct {
	deps Deps
	log  logger.ILogger
}

func NewPipeline(deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = logger.NewNoopLogger()
	}
	return &Pipeline{
		deps: deps,
		log:  deps.Log,
	}
}

// Result is the terminal outcome of one job, including every swallowed
// per-unit failure.
type Result struct {
	Status      entity.ContentStatus
	TotalPages  int
	TotalChunks int
	Diagnostics []Diagnostic
	Error       string
}

// Process drives a job to a terminal state. It never returns an error to the
// worker loop: any fatal failure, a panicking stage included, is absorbed
// into the "failed" terminal status so one bad job can never stop the queue.
func (p *Pipeline) Process(ctx context.Context, job *Job) (result *Result) {
	p.log.Info("pipeline", "Job started", map[string]interface{}{
		"content_id": job.ContentId.String(),
		"kind":       string(job.Kind),
	})

	diags := NewDiagnostics()

	defer func() {
		if r := recover(); r != nil {
			result = p.fail(ctx, job, diags, fmt.Errorf("stage panicked: %v", r))
		}
	}()

	var pages []entity.PageUnit
	var err error
	switch job.Kind {
	case JobKindDocument:
		pages, err = p.processDocument(ctx, job, diags)
	case JobKindVideo:
		pages, err = p.processVideo(ctx, job, false, diags)
	case JobKindYoutube:
		pages, err = p.processVideo(ctx, job, true, diags)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err != nil {
		return p.fail(ctx, job, diags, err)
	}

	chunks := p.buildChunks(job, pages)
	if len(chunks) == 0 {
		return p.fail(ctx, job, diags, errors.New("no extractable content in source"))
	}

	p.summarizeChunks(ctx, chunks, diags)

	if err := p.embedChunks(ctx, chunks); err != nil {
		return p.fail(ctx, job, diags, err)
	}

	if err := p.persist(ctx, job, len(pages), chunks); err != nil {
		return p.fail(ctx, job, diags, err)
	}

	if p.deps.Publisher != nil {
		evt := events.NewContentCompleted(job.ContentId, job.ClassroomId, len(pages), len(chunks))
		if err := p.deps.Publisher.Publish(ctx, evt); err != nil {
			p.log.Warn("pipeline", "Failed to publish completion event", map[string]interface{}{
				"content_id": job.ContentId.String(),
				"error":      err.Error(),
			})
		}
	}

	p.log.Info("pipeline", "Job completed", map[string]interface{}{
		"content_id":   job.ContentId.String(),
		"total_pages":  len(pages),
		"total_chunks": len(chunks),
		"degraded":     diags.Len(),
	})

	return &Result{
		Status:      entity.ContentStatusCompleted,
		TotalPages:  len(pages),
		TotalChunks: len(chunks),
		Diagnostics: diags.Items(),
	}
}

func (p *Pipeline) fail(ctx context.Context, job *Job, diags *Diagnostics, cause error) *Result {
	p.log.Error("pipeline", "Job failed", map[string]interface{}{
		"content_id": job.ContentId.String(),
		"kind":       string(job.Kind),
		"error":      cause.Error(),
	})

	uow := p.deps.UowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().MarkFailed(ctx, job.ContentId); err != nil {
		p.log.Error("pipeline", "Failed to mark record as failed", map[string]interface{}{
			"content_id": job.ContentId.String(),
			"error":      err.Error(),
		})
	}

	if p.deps.Publisher != nil {
		evt := events.NewContentFailed(job.ContentId, job.ClassroomId, cause.Error())
		if err := p.deps.Publisher.Publish(ctx, evt); err != nil {
			p.log.Warn("pipeline", "Failed to publish failure event", map[string]interface{}{
				"content_id": job.ContentId.String(),
				"error":      err.Error(),
			})
		}
	}

	return &Result{
		Status:      entity.ContentStatusFailed,
		Diagnostics: diags.Items(),
		Error:       cause.Error(),
	}
}
