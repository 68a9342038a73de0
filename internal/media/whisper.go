package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

// WhisperClient transcribes audio through an OpenAI-compatible
// /audio/transcriptions endpoint.
type WhisperClient struct {
	url        string
	model      string
	httpClient *http.Client
}

func NewWhisperClient(url, model string, timeout time.Duration) *WhisperClient {
	return &WhisperClient{
		url:        url,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transcriptionResponse struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audioPath, language string) ([]models.Segment, error) {
	log := logger.FromContext(ctx).WithPrefix("whisper").WithFields(map[string]any{
		"model":    c.model,
		"language": language,
	})

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Stream the multipart body so large episodes are never held in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, f, filepath.Base(audioPath), map[string]string{
			"model":           c.model,
			"language":        language,
			"response_format": "verbose_json",
		}))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Debug("transcribing %s", audioPath)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to reach transcription service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("transcription failed: status=%d, body=%s", resp.StatusCode, string(b))
		return nil, fmt.Errorf("transcription service returned status %d", resp.StatusCode)
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode transcription: %v", err)
		return nil, err
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		from, to := s.Start, s.End
		segments = append(segments, models.Segment{
			ID:    uuid.NewString(),
			Start: &from,
			End:   &to,
			Text:  text,
		})
	}
	log.Debug("received %d segments in %v", len(segments), time.Since(start))
	return segments, nil
}

func writeForm(mw *multipart.Writer, r io.Reader, filename string, fields map[string]string) error {
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

var _ Transcriber = (*WhisperClient)(nil)
