package bootstrap

import (
	"context"
	"log"

	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/controller"
	"classroom-ai-be/internal/pkg/logger"
	"classroom-ai-be/internal/repository/unitofwork"
	"classroom-ai-be/internal/service"
	"classroom-ai-be/pkg/blob"
	"classroom-ai-be/pkg/embedding"
	"classroom-ai-be/pkg/ingestion"
	"classroom-ai-be/pkg/llm"
	"classroom-ai-be/pkg/llm/factory"
	"classroom-ai-be/pkg/media"
	"classroom-ai-be/pkg/ocr"
	"classroom-ai-be/pkg/pdf"
	"classroom-ai-be/pkg/ratelimit"
	"classroom-ai-be/pkg/speech"
	"classroom-ai-be/pkg/vision"

	pktNats "classroom-ai-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ContentController controller.IContentController

	// Background workers (exposed for main.go to run)
	Queue    *ingestion.Queue
	Pipeline *ingestion.Pipeline

	// Shared infrastructure
	Logger    logger.ILogger
	Publisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Rate limiter shared by every pipeline stage
	limits := make(map[string]ratelimit.ServiceLimit, len(cfg.Ingestion.Limits))
	for name, limit := range cfg.Ingestion.Limits {
		limits[name] = ratelimit.ServiceLimit{Burst: limit.Burst, Pause: limit.Pause}
	}
	limiter := ratelimit.New(limits, sysLogger)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	var summarizer llm.LLMProvider
	apiKey := cfg.Keys.OpenAI
	baseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		baseURL = cfg.Ai.OpenAIBaseURL
	}
	summarizer, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		log.Printf("[WARN] Summarization disabled: %v", err)
		summarizer = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	var analyzer ocr.DocumentAnalyzer
	if cfg.Ai.OCREndpoint != "" {
		analyzer = ocr.NewAzureAnalyzer(cfg.Ai.OCREndpoint, cfg.Keys.AzureOCRKey)
	} else {
		log.Fatalf("[FATAL] AZURE_OCR_ENDPOINT is required")
	}

	var describer vision.Describer
	if cfg.Keys.GoogleGemini != "" {
		describer = vision.NewGeminiDescriber(cfg.Keys.GoogleGemini, cfg.Ai.VisionModel)
	} else {
		log.Printf("[WARN] No vision key configured, diagram descriptions degrade to placeholders")
	}

	var transcriber speech.Transcriber
	if cfg.Keys.OpenAI != "" {
		transcriber = speech.NewWhisperTranscriber(cfg.Ai.WhisperBaseURL, cfg.Keys.OpenAI, cfg.Ai.WhisperModel)
	} else {
		log.Printf("[WARN] No transcription key configured, video transcripts disabled")
	}

	// 4. Object storage
	store, err := blob.NewS3Store(context.Background(), cfg.Storage.Region, cfg.Storage.Endpoint, cfg.Storage.PublicURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	// 5. Event bus (terminal state notifications, best effort)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 6. Ingestion pipeline + queue
	queue := ingestion.NewQueue(sysLogger)
	pipelineLogger := logger.NewIsolatedLogger("logs/ingestion.log")

	deps := ingestion.Deps{
		Cfg:         cfg.Ingestion,
		Bucket:      cfg.Storage.Bucket,
		Limiter:     limiter,
		Analyzer:    analyzer,
		Describer:   describer,
		Summarizer:  summarizer,
		Embedder:    embeddingProvider,
		Transcriber: transcriber,
		Renderer:    pdf.NewFitzRenderer(),
		Media:       media.NewFFmpegProcessor(),
		Downloader:  media.NewYtDlpDownloader(),
		Store:       store,
		UowFactory:  uowFactory,
		Log:         pipelineLogger,
	}
	if natsPub != nil {
		deps.Publisher = natsPub
	}
	pipeline := ingestion.NewPipeline(deps)

	// 7. Services and controllers
	contentService := service.NewContentService(
		uowFactory,
		queue,
		pdf.NewFitzRenderer(),
		embeddingProvider,
		cfg.Ingestion,
		sysLogger,
	)

	return &Container{
		ContentController: controller.NewContentController(contentService),
		Queue:             queue,
		Pipeline:          pipeline,
		Logger:            sysLogger,
		Publisher:         natsPub,
	}
}
