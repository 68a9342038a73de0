package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockAnalyzer is a mock implementation of analysis.Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(models.Analysis), args.Error(1)
}
