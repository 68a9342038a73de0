package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockReviewLogRepository is a mock implementation of repository.ReviewLogRepository
type MockReviewLogRepository struct {
	mock.Mock
}

func (m *MockReviewLogRepository) Append(ctx context.Context, entry models.ReviewLogEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLogEntry), args.Error(1)
}

func (m *MockReviewLogRepository) Count(ctx context.Context, filter models.ReviewLogFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewLogRepository) CountByResponse(ctx context.Context, filter models.ReviewLogFilter) ([]models.ResponseCount, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResponseCount), args.Error(1)
}

func (m *MockReviewLogRepository) DeleteBySource(ctx context.Context, audioPath string) (int64, error) {
	args := m.Called(ctx, audioPath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewLogRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
