package analysis

import (
	"context"
	"fmt"

	"github.com/vytor/lingoflash/internal/config"
)

const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

// FromConfig builds the analyzer selected by ANALYSIS_BACKEND.
func FromConfig(ctx context.Context, cfg config.Config) (Analyzer, error) {
	switch cfg.AnalysisBackend {
	case BackendOllama, "":
		return NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.AnalysisTimeout), nil
	case BackendGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AnalysisTimeout)
	default:
		return nil, fmt.Errorf("unknown analysis backend %q", cfg.AnalysisBackend)
	}
}
