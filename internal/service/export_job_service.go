package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/dto"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/export"
	"github.com/noah-isme/staffplan-api/pkg/jobs"
)

// Export job states.
const (
	ExportStatusQueued   = "queued"
	ExportStatusRunning  = "running"
	ExportStatusFinished = "finished"
	ExportStatusFailed   = "failed"
)

const exportJobKind = "overallocation_export"

type exportRenderer interface {
	Overallocation(ctx context.Context, query dto.ExportQuery) (*ExportResult, error)
}

type exportStore interface {
	Save(name string, data []byte) error
	Read(name string) ([]byte, error)
	Sweep(olderThan time.Duration) ([]string, error)
}

type exportSigner interface {
	Sign(jobID, name string) (string, time.Time, error)
	Verify(token string) (jobID, name string, err error)
}

// ExportJobConfig governs the worker pool and how long results are kept.
type ExportJobConfig struct {
	Workers         int
	MaxRetries      int
	RetryDelay      time.Duration
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	// DownloadPath prefixes the token in download URLs.
	DownloadPath string
}

// ExportJobParams groups constructor dependencies.
type ExportJobParams struct {
	Renderer exportRenderer
	Store    exportStore
	Signer   exportSigner
	Logger   *zap.Logger
	Config   ExportJobConfig
}

type exportJob struct {
	id         string
	query      dto.ExportQuery
	status     string
	filename   string
	mime       string
	rows       int
	token      string
	expiresAt  time.Time
	errMessage string
	createdAt  time.Time
	finishedAt time.Time
}

// ExportJobService renders overallocation exports in the background and hands
// out signed download links. Job state lives in memory; files live in Store.
type ExportJobService struct {
	renderer exportRenderer
	store    exportStore
	signer   exportSigner
	queue    *jobs.Queue[dto.ExportQuery]
	logger   *zap.Logger
	cfg      ExportJobConfig
	now      func() time.Time

	mu   sync.RWMutex
	jobs map[string]*exportJob
}

// NewExportJobService constructs the service and its stopped worker queue.
func NewExportJobService(params ExportJobParams) *ExportJobService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/reports/overallocation/downloads"
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportJobService{
		renderer: params.Renderer,
		store:    params.Store,
		signer:   params.Signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		jobs:     make(map[string]*exportJob),
	}
	s.queue = jobs.New("exports", s.handle, jobs.Config[dto.ExportQuery]{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDrop:     s.dropped,
	})
	return s
}

// Start runs the workers and, when an interval is configured, the sweeper.
func (s *ExportJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Stop waits for running exports to return.
func (s *ExportJobService) Stop() {
	s.queue.Stop()
}

// Submit validates the format and queues an export.
func (s *ExportJobService) Submit(ctx context.Context, query dto.ExportQuery) (*dto.ExportJobResponse, error) {
	if query.Format == "" {
		query.Format = string(export.FormatCSV)
	}
	if _, err := export.ForFormat(export.Format(query.Format)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, err.Error())
	}

	job := &exportJob{
		id:        uuid.NewString(),
		query:     query,
		status:    ExportStatusQueued,
		createdAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job[dto.ExportQuery]{ID: job.id, Kind: exportJobKind, Payload: query}); err != nil {
		s.finish(job.id, func(j *exportJob) {
			j.status = ExportStatusFailed
			j.errMessage = "failed to enqueue export"
			j.finishedAt = s.now().UTC()
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.Status(ctx, job.id)
}

// Status reports the state of one export.
func (s *ExportJobService) Status(_ context.Context, id string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	return s.describe(job), nil
}

// Download resolves a signed token to the rendered file.
func (s *ExportJobService) Download(_ context.Context, token string) (*ExportResult, error) {
	jobID, name, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	s.mu.RLock()
	job, ok := s.jobs[jobID]
	var snapshot exportJob
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	if snapshot.status != ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrExportNotReady, fmt.Sprintf("export is %s", snapshot.status))
	}
	if snapshot.token != token || snapshot.filename != name {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "token does not match export")
	}

	body, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export")
	}
	return &ExportResult{Filename: name, ContentType: snapshot.mime, Body: body, Rows: snapshot.rows}, nil
}

// Cleanup drops expired files and the jobs that produced them.
func (s *ExportJobService) Cleanup() {
	removed, err := s.store.Sweep(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export sweep failed", zap.Error(err))
	}
	cutoff := s.now().Add(-s.cfg.ResultTTL)

	s.mu.Lock()
	dropped := 0
	for id, job := range s.jobs {
		if job.finishedAt.IsZero() || job.finishedAt.After(cutoff) {
			continue
		}
		delete(s.jobs, id)
		dropped++
	}
	s.mu.Unlock()

	if len(removed) > 0 || dropped > 0 {
		s.logger.Info("expired exports removed", zap.Int("files", len(removed)), zap.Int("jobs", dropped))
	}
}

func (s *ExportJobService) handle(ctx context.Context, job jobs.Job[dto.ExportQuery]) error {
	s.finish(job.ID, func(j *exportJob) { j.status = ExportStatusRunning })

	result, err := s.renderer.Overallocation(ctx, job.Payload)
	if err == nil {
		err = s.store.Save(result.Filename, result.Body)
	}
	var token string
	var expires time.Time
	if err == nil {
		token, expires, err = s.signer.Sign(job.ID, result.Filename)
	}
	if err != nil {
		if permanent(err) || job.Attempt >= s.queue.MaxRetries() {
			s.logger.Warn("export failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			s.finish(job.ID, func(j *exportJob) {
				j.status = ExportStatusFailed
				j.errMessage = appErrors.FromError(err).Message
				j.finishedAt = s.now().UTC()
			})
			return nil
		}
		s.finish(job.ID, func(j *exportJob) {
			j.status = ExportStatusQueued
			j.errMessage = err.Error()
		})
		return err
	}

	s.finish(job.ID, func(j *exportJob) {
		j.status = ExportStatusFinished
		j.filename = result.Filename
		j.mime = result.ContentType
		j.rows = result.Rows
		j.token = token
		j.expiresAt = expires
		j.errMessage = ""
		j.finishedAt = s.now().UTC()
	})
	s.logger.Info("export ready", zap.String("job_id", job.ID), zap.String("file", result.Filename), zap.Int("rows", result.Rows))
	return nil
}

// dropped fails a job the queue abandoned so Cleanup can expire it.
func (s *ExportJobService) dropped(job jobs.Job[dto.ExportQuery], err error) {
	s.logger.Warn("export abandoned", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
	s.finish(job.ID, func(j *exportJob) {
		if j.status == ExportStatusFinished || j.status == ExportStatusFailed {
			return
		}
		j.status = ExportStatusFailed
		j.errMessage = "export abandoned before completion"
		j.finishedAt = s.now().UTC()
	})
}

func (s *ExportJobService) finish(id string, update func(*exportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		update(job)
	}
}

func (s *ExportJobService) describe(job *exportJob) *dto.ExportJobResponse {
	resp := &dto.ExportJobResponse{
		ID:        job.id,
		Status:    job.status,
		Format:    job.query.Format,
		Rows:      job.rows,
		Error:     job.errMessage,
		CreatedAt: job.createdAt,
	}
	if job.status == ExportStatusFinished {
		expires := job.expiresAt
		resp.ExpiresAt = &expires
		resp.DownloadURL = s.cfg.DownloadPath + "/" + url.PathEscape(job.token)
	}
	if !job.finishedAt.IsZero() {
		finished := job.finishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

// permanent reports request errors that a retry cannot fix.
func permanent(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Status < 500
}
