package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Storage   StorageConfig
	Ingestion IngestionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	AzureOCRKey  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string // e.g. "llama3", "gpt-4o-mini"
	OpenAIBaseURL     string
	VisionModel       string // Gemini model used for diagram/frame description
	OCREndpoint       string // Azure Document Intelligence endpoint
	WhisperBaseURL    string // OpenAI-compatible transcription endpoint
	WhisperModel      string
}

type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible stores
	PublicURL string // optional, base URL for served objects
}

// ServiceLimit is the burst-then-pause budget for one external service.
type ServiceLimit struct {
	Burst int
	Pause time.Duration
}

type IngestionConfig struct {
	MaxFileSize      int64
	MaxPages         int
	ChunkSize        int
	ChunkOverlap     int
	ChunkMinLength   int
	EmbedBatchSize   int
	OCRBatchPages    int
	DiagramMaxWidth  int
	DiagramMaxHeight int
	DiagramQuality   int
	DiagramImageArea float64 // min image-area / page-area ratio
	DiagramTextArea  float64 // max text-area / page-area ratio
	FrameInterval    float64 // seconds between sampled video frames
	MotionThreshold  float64 // mean pixel delta that marks a key frame
	Limits           map[string]ServiceLimit
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			AzureOCRKey:  getEnv("AZURE_OCR_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			VisionModel:       getEnv("VISION_MODEL", "gemini-1.5-flash"),
			OCREndpoint:       getEnv("AZURE_OCR_ENDPOINT", ""),
			WhisperBaseURL:    getEnv("WHISPER_BASE_URL", "https://api.openai.com/v1"),
			WhisperModel:      getEnv("WHISPER_MODEL", "whisper-1"),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("STORAGE_BUCKET", "classroom-content"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			PublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		},
		Ingestion: IngestionConfig{
			MaxFileSize:      int64(getEnvAsInt("MAX_FILE_SIZE", 50*1024*1024)),
			MaxPages:         getEnvAsInt("MAX_PAGES", 300),
			ChunkSize:        getEnvAsInt("MAX_CHUNK_SIZE", 1500),
			ChunkOverlap:     getEnvAsInt("CHUNK_OVERLAP", 150),
			ChunkMinLength:   getEnvAsInt("CHUNK_MIN_LENGTH", 10),
			EmbedBatchSize:   getEnvAsInt("EMBEDDING_BATCH_SIZE", 16),
			OCRBatchPages:    getEnvAsInt("OCR_BATCH_PAGES", 2),
			DiagramMaxWidth:  getEnvAsInt("DIAGRAM_MAX_WIDTH", 1024),
			DiagramMaxHeight: getEnvAsInt("DIAGRAM_MAX_HEIGHT", 1024),
			DiagramQuality:   getEnvAsInt("DIAGRAM_JPEG_QUALITY", 80),
			DiagramImageArea: getEnvAsFloat("DIAGRAM_IMAGE_AREA_RATIO", 0.4),
			DiagramTextArea:  getEnvAsFloat("DIAGRAM_TEXT_AREA_RATIO", 0.2),
			FrameInterval:    getEnvAsFloat("FRAME_INTERVAL_SECONDS", 5.0),
			MotionThreshold:  getEnvAsFloat("MOTION_THRESHOLD", 12.0),
			Limits: map[string]ServiceLimit{
				"ocr": {
					Burst: getEnvAsInt("OCR_BURST_LIMIT", 15),
					Pause: getEnvAsDuration("OCR_PAUSE", 60*time.Second),
				},
				"vision": {
					Burst: getEnvAsInt("VISION_BURST_LIMIT", 10),
					Pause: getEnvAsDuration("VISION_PAUSE", 60*time.Second),
				},
				"summarize": {
					Burst: getEnvAsInt("SUMMARIZE_BURST_LIMIT", 30),
					Pause: getEnvAsDuration("SUMMARIZE_PAUSE", 60*time.Second),
				},
				"embedding": {
					Burst: getEnvAsInt("EMBEDDING_BURST_LIMIT", 100),
					Pause: getEnvAsDuration("EMBEDDING_PAUSE", 60*time.Second),
				},
				"transcribe": {
					Burst: getEnvAsInt("TRANSCRIBE_BURST_LIMIT", 5),
					Pause: getEnvAsDuration("TRANSCRIBE_PAUSE", 60*time.Second),
				},
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
