package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/service"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/response"
)

type exportJobService interface {
	Submit(ctx context.Context, query dto.ExportQuery) (*dto.ExportJobResponse, error)
	Status(ctx context.Context, id string) (*dto.ExportJobResponse, error)
	Download(ctx context.Context, token string) (*service.ExportResult, error)
}

// ExportJobHandler queues overallocation exports and serves finished files.
type ExportJobHandler struct {
	jobs exportJobService
}

// NewExportJobHandler constructs handler.
func NewExportJobHandler(jobs exportJobService) *ExportJobHandler {
	return &ExportJobHandler{jobs: jobs}
}

// Submit godoc
// @Summary Queue an overallocation export
// @Tags Reports
// @Produce json
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param profile query []string false "Profile filter" collectionFormat(multi)
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param contract_type query []string false "Contract type filter" collectionFormat(multi)
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/overallocation/exports [post]
func (h *ExportJobHandler) Submit(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Poll an export
// @Tags Reports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/overallocation/exports/{id} [get]
func (h *ExportJobHandler) Status(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	job, err := h.jobs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// Download godoc
// @Summary Download a finished export
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/overallocation/downloads/{token} [get]
func (h *ExportJobHandler) Download(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	result, err := h.jobs.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
