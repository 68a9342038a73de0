package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/worker"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(req models.ImportRequest) (string, error) {
	args := m.Called(req)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) EnqueueAnalysis(key models.AnalysisKey) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) Status(id string) (worker.Record, bool) {
	args := m.Called(id)
	return args.Get(0).(worker.Record), args.Bool(1)
}

func (m *MockJobQueue) List() []worker.Record {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]worker.Record)
}

func (m *MockJobQueue) Cancel(id string) bool {
	args := m.Called(id)
	return args.Bool(0)
}
