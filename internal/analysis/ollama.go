package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

// Ollama analyzes text with a local Ollama server.
type Ollama struct {
	host       string
	model      string
	httpClient *http.Client
}

func NewOllama(host, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

func (o *Ollama) Analyze(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("ollama").WithField("model", o.model)

	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: Prompt(key),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return models.Analysis{}, err
	}

	url := o.host + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return models.Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("requesting analysis from %s", url)
	start := time.Now()

	resp, err := o.httpClient.Do(req)
	if err != nil {
		log.Error("failed to reach ollama: %v", err)
		return models.Analysis{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug("analysis response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("analysis request failed: status=%d, body=%s", resp.StatusCode, string(b))
		return models.Analysis{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode generate response: %v", err)
		return models.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Response == nil {
		log.Error("generate response has no response field")
		return models.Analysis{}, fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}

	result, err := Decode([]byte(*out.Response))
	if err != nil {
		log.Warn("model returned unparseable analysis: %v", err)
		return models.Analysis{}, err
	}
	return result, nil
}

var _ Analyzer = (*Ollama)(nil)
