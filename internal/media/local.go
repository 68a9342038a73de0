package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

// LocalPipeline copies uploads and downloads podcast episodes into a
// directory, then hands the audio to a Transcriber. YouTube needs an
// external downloader and is not handled here.
type LocalPipeline struct {
	downloadDir string
	transcriber Transcriber
	httpClient  *http.Client
}

func NewLocalPipeline(downloadDir string, transcriber Transcriber) (*LocalPipeline, error) {
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalPipeline{
		downloadDir: downloadDir,
		transcriber: transcriber,
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (p *LocalPipeline) ProcessUpload(ctx context.Context, path, language string) (models.MediaResult, error) {
	log := logger.FromContext(ctx).WithPrefix("media").WithField("path", path)

	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		log.Warn("upload is not an audio file: %s", ext)
		return models.MediaResult{}, fmt.Errorf("%w: %s files", ErrUnsupportedSource, ext)
	}

	dest := filepath.Join(p.downloadDir, filepath.Base(path))
	if err := copyFile(path, dest); err != nil {
		log.Error("failed to copy upload: %v", err)
		return models.MediaResult{}, fmt.Errorf("failed to process upload: %w", err)
	}
	log.Debug("upload copied to %s", dest)

	return p.transcribe(ctx, models.SourceInfo{
		Title:     models.SourceName(path),
		AudioPath: dest,
	}, language)
}

func (p *LocalPipeline) ProcessYouTube(ctx context.Context, url, language string) (models.MediaResult, error) {
	logger.FromContext(ctx).WithPrefix("media").Warn("youtube import requested but no downloader is configured: %s", url)
	return models.MediaResult{}, fmt.Errorf("%w: youtube", ErrUnsupportedSource)
}

func (p *LocalPipeline) ProcessPodcastEpisode(ctx context.Context, url, title, language string) (models.MediaResult, error) {
	log := logger.FromContext(ctx).WithPrefix("media").WithField("title", title)

	dest := filepath.Join(p.downloadDir, safeFileName(title)+".mp3")
	if _, err := os.Stat(dest); err == nil {
		log.Info("episode already downloaded: %s", dest)
	} else if err := p.download(ctx, url, dest); err != nil {
		log.Error("failed to download episode: %v", err)
		return models.MediaResult{}, err
	}

	return p.transcribe(ctx, models.SourceInfo{
		Title:     title,
		AudioPath: dest,
		URL:       url,
	}, language)
}

func (p *LocalPipeline) transcribe(ctx context.Context, info models.SourceInfo, language string) (models.MediaResult, error) {
	log := logger.FromContext(ctx).WithPrefix("media")

	start := time.Now()
	segments, err := p.transcriber.Transcribe(ctx, info.AudioPath, language)
	if err != nil {
		log.Error("transcription failed: %v", err)
		return models.MediaResult{}, fmt.Errorf("transcription failed: %w", err)
	}
	if len(segments) == 0 {
		log.Warn("transcription of %s produced no segments", info.AudioPath)
		return models.MediaResult{}, ErrNoSegments
	}
	log.Info("transcribed %d segments in %v", len(segments), time.Since(start))

	return models.MediaResult{SourceInfo: info, Segments: segments}, nil
}

func (p *LocalPipeline) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	return writeAtomic(dest, resp.Body)
}

func copyFile(src, dest string) error {
	if abs(src) == abs(dest) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeAtomic(dest, in)
}

// writeAtomic streams r into dest through a temp file so a failed transfer
// never leaves a truncated file behind.
func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}

var _ Pipeline = (*LocalPipeline)(nil)
