package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string        `env:"ADDR" validate:"required"`
	DataDir             string        `env:"DATA_DIR" validate:"required"`
	DownloadDir         string        `env:"DOWNLOAD_DIR" validate:"required"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"required,oneof=DEBUG INFO WARN WARNING ERROR debug info warn warning error"`
	ReviewLogPath       string        `env:"REVIEW_LOG_PATH"`
	AnalysisBackend     string        `env:"ANALYSIS_BACKEND" validate:"oneof=ollama gemini"`
	OllamaHost          string        `env:"OLLAMA_HOST" validate:"required_if=AnalysisBackend ollama"`
	OllamaModel         string        `env:"OLLAMA_MODEL" validate:"required_if=AnalysisBackend ollama"`
	GeminiAPIKey        string        `env:"GEMINI_API_KEY" validate:"required_if=AnalysisBackend gemini"`
	GeminiModel         string        `env:"GEMINI_MODEL" validate:"required_if=AnalysisBackend gemini"`
	AnalysisTimeout     time.Duration `env:"ANALYSIS_TIMEOUT" validate:"gt=0"`
	TranscribeURL       string        `env:"TRANSCRIBE_URL" validate:"omitempty,url"`
	TranscribeModel     string        `env:"TRANSCRIBE_MODEL"`
	ImportWorkerCount   int           `env:"IMPORT_WORKER_COUNT" validate:"gte=1,lte=32"`
	ImportQueueSize     int           `env:"IMPORT_QUEUE_SIZE" validate:"gte=1"`
	AnalysisWorkerCount int           `env:"ANALYSIS_WORKER_COUNT" validate:"gte=1,lte=32"`
	AnalysisQueueSize   int           `env:"ANALYSIS_QUEUE_SIZE" validate:"gte=1"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DataDir:             envOr("DATA_DIR", "./data"),
		DownloadDir:         envOr("DOWNLOAD_DIR", "./downloads"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		ReviewLogPath:       envOr("REVIEW_LOG_PATH", ""),
		AnalysisBackend:     envOr("ANALYSIS_BACKEND", "ollama"),
		OllamaHost:          envOr("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:         envOr("OLLAMA_MODEL", "llama3.2:3b"),
		GeminiAPIKey:        envOr("GEMINI_API_KEY", ""),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		AnalysisTimeout:     envDurationOr("ANALYSIS_TIMEOUT", 30*time.Second),
		TranscribeURL:       envOr("TRANSCRIBE_URL", ""),
		TranscribeModel:     envOr("TRANSCRIBE_MODEL", "whisper-1"),
		ImportWorkerCount:   envIntOr("IMPORT_WORKER_COUNT", 1),
		ImportQueueSize:     envIntOr("IMPORT_QUEUE_SIZE", 16),
		AnalysisWorkerCount: envIntOr("ANALYSIS_WORKER_COUNT", 2),
		AnalysisQueueSize:   envIntOr("ANALYSIS_QUEUE_SIZE", 64),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their environment variable so messages point at
	// something the operator can change.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks the configuration and returns an error describing every
// invalid setting.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), strings.Replace(fe.Param(), " ", "=", 1))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
