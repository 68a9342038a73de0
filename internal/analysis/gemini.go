package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"google.golang.org/genai"
)

// ErrBlocked is returned when Gemini withholds an answer for safety reasons.
var ErrBlocked = errors.New("analysis: content blocked by safety filters")

// contentGenerator is the part of *genai.Models the Gemini backend uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini analyzes text with the Gemini API.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if model == "" {
		return nil, errors.New("gemini model cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{models: client.Models, model: model, timeout: timeout}, nil
}

func (g *Gemini) Analyze(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini").WithField("model", g.model)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(key)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		log.Error("gemini call failed: %v", err)
		return models.Analysis{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Debug("gemini answered in %v", time.Since(start))

	switch {
	case resp == nil, len(resp.Candidates) == 0:
		return models.Analysis{}, fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		log.Warn("analysis blocked by safety filters")
		return models.Analysis{}, ErrBlocked
	case resp.Candidates[0].Content == nil:
		return models.Analysis{}, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	result, err := Decode([]byte(text.String()))
	if err != nil {
		log.Warn("model returned unparseable analysis: %v", err)
		return models.Analysis{}, err
	}
	return result, nil
}

var _ Analyzer = (*Gemini)(nil)
