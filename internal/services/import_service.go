package services

import (
	"context"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/jobs"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/worker"
	"github.com/vytor/lingoflash/internal/workspace"
)

// ImportService queues background imports and analysis prefetches
type ImportService interface {
	Import(ctx context.Context, req models.ImportRequest) (string, error)
	PrefetchAnalysis(ctx context.Context, key models.AnalysisKey) (string, error)
	Job(ctx context.Context, id string) (worker.Record, error)
	Jobs(ctx context.Context) ([]worker.Record, error)
	CancelJob(ctx context.Context, id string) error
}

type importService struct {
	ws    *workspace.Workspace
	queue jobs.JobQueue
}

// NewImportService creates a new ImportService
func NewImportService(ws *workspace.Workspace, queue jobs.JobQueue) ImportService {
	return &importService{ws: ws, queue: queue}
}

func (s *importService) Import(ctx context.Context, req models.ImportRequest) (string, error) {
	log := logger.FromContext(ctx).WithField("kind", req.Kind)

	if err := validateStruct(req); err != nil {
		log.Debug("rejected import request: %v", err)
		return "", err
	}
	if req.Language == "" {
		_ = s.ws.View(func(st *workspace.State) error {
			req.Language = st.Settings.LearningLanguage
			return nil
		})
	}

	log.Info("queueing import job")
	id, err := s.queue.EnqueueImport(req)
	if err != nil {
		log.Error("failed to queue import: %v", err)
		return "", errors.NewCollaboratorError("import queue", err)
	}
	return id, nil
}

func (s *importService) PrefetchAnalysis(ctx context.Context, key models.AnalysisKey) (string, error) {
	log := logger.FromContext(ctx)

	id, err := s.queue.EnqueueAnalysis(key)
	if err != nil {
		log.Warn("failed to queue analysis: %v", err)
		return "", errors.NewCollaboratorError("analysis queue", err)
	}
	return id, nil
}

func (s *importService) Job(ctx context.Context, id string) (worker.Record, error) {
	rec, ok := s.queue.Status(id)
	if !ok {
		logger.FromContext(ctx).Debug("unknown job: %s", id)
		return worker.Record{}, errors.NewNotFoundError("job", id)
	}
	return rec, nil
}

func (s *importService) Jobs(ctx context.Context) ([]worker.Record, error) {
	return s.queue.List(), nil
}

func (s *importService) CancelJob(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithField("job_id", id)

	if !s.queue.Cancel(id) {
		if _, ok := s.queue.Status(id); !ok {
			return errors.NewNotFoundError("job", id)
		}
		return errors.NewBadRequestError("job already finished")
	}
	log.Info("job cancelled")
	return nil
}
