package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockPipeline is a mock implementation of media.Pipeline
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) ProcessUpload(ctx context.Context, path, language string) (models.MediaResult, error) {
	args := m.Called(ctx, path, language)
	return args.Get(0).(models.MediaResult), args.Error(1)
}

func (m *MockPipeline) ProcessYouTube(ctx context.Context, url, language string) (models.MediaResult, error) {
	args := m.Called(ctx, url, language)
	return args.Get(0).(models.MediaResult), args.Error(1)
}

func (m *MockPipeline) ProcessPodcastEpisode(ctx context.Context, url, title, language string) (models.MediaResult, error) {
	args := m.Called(ctx, url, title, language)
	return args.Get(0).(models.MediaResult), args.Error(1)
}

// MockSourceAdder is a mock implementation of worker.SourceAdder
type MockSourceAdder struct {
	mock.Mock
}

func (m *MockSourceAdder) AddSource(ctx context.Context, source models.SourceInfo, segments []models.Segment) (models.AddResult, error) {
	args := m.Called(ctx, source, segments)
	return args.Get(0).(models.AddResult), args.Error(1)
}
