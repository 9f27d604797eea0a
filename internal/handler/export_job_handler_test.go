package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/service"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

type fakeExportJobs struct {
	submitted dto.ExportQuery
	statusID  string
	token     string
	statusErr error
	download  *service.ExportResult
	dlErr     error
}

func (f *fakeExportJobs) Submit(_ context.Context, query dto.ExportQuery) (*dto.ExportJobResponse, error) {
	f.submitted = query
	return &dto.ExportJobResponse{ID: "job-1", Status: service.ExportStatusQueued, Format: query.Format, CreatedAt: time.Now()}, nil
}

func (f *fakeExportJobs) Status(_ context.Context, id string) (*dto.ExportJobResponse, error) {
	f.statusID = id
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &dto.ExportJobResponse{ID: id, Status: service.ExportStatusFinished, DownloadURL: "/downloads/tok"}, nil
}

func (f *fakeExportJobs) Download(_ context.Context, token string) (*service.ExportResult, error) {
	f.token = token
	return f.download, f.dlErr
}

func TestExportJobHandlerSubmit(t *testing.T) {
	jobs := &fakeExportJobs{}
	handler := NewExportJobHandler(jobs)

	c, rec := newTestContext(http.MethodPost, "/reports/overallocation/exports?format=pdf&profile=engineer", "")
	handler.Submit(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "job-1", envelope.Data["id"])
	assert.Equal(t, "queued", envelope.Data["status"])
	assert.Equal(t, "pdf", jobs.submitted.Format)
	assert.Equal(t, []string{"engineer"}, jobs.submitted.Profiles)
}

func TestExportJobHandlerStatus(t *testing.T) {
	jobs := &fakeExportJobs{}
	handler := NewExportJobHandler(jobs)

	c, rec := newTestContext(http.MethodGet, "/reports/overallocation/exports/job-9", "")
	c.Params = gin.Params{{Key: "id", Value: "job-9"}}
	handler.Status(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job-9", jobs.statusID)
	assert.Equal(t, "/downloads/tok", decodeEnvelope(t, rec).Data["download_url"])

	jobs.statusErr = appErrors.Clone(appErrors.ErrNotFound, "export not found")
	c, rec = newTestContext(http.MethodGet, "/reports/overallocation/exports/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Status(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportJobHandlerDownload(t *testing.T) {
	jobs := &fakeExportJobs{download: &service.ExportResult{
		Filename:    "overallocation.pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.3"),
	}}
	handler := NewExportJobHandler(jobs)

	c, rec := newTestContext(http.MethodGet, "/reports/overallocation/downloads/abc", "")
	c.Params = gin.Params{{Key: "token", Value: "abc"}}
	handler.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", jobs.token)
	assert.Equal(t, `attachment; filename="overallocation.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())

	jobs.dlErr = appErrors.Clone(appErrors.ErrExportNotReady, "export is running")
	c, rec = newTestContext(http.MethodGet, "/reports/overallocation/downloads/abc", "")
	c.Params = gin.Params{{Key: "token", Value: "abc"}}
	handler.Download(c)
	assert.Equal(t, http.StatusConflict, rec.Code)

	jobs.dlErr = appErrors.ErrInvalidToken
	c, rec = newTestContext(http.MethodGet, "/reports/overallocation/downloads/abc", "")
	c.Params = gin.Params{{Key: "token", Value: "abc"}}
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportJobHandlerWithoutService(t *testing.T) {
	handler := NewExportJobHandler(nil)
	c, rec := newTestContext(http.MethodPost, "/reports/overallocation/exports", "")
	handler.Submit(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
