package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/service"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/response"
)

type overallocationReportService interface {
	OverallocationReport(ctx context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, bool, error)
}

type reportExporter interface {
	Overallocation(ctx context.Context, query dto.ExportQuery) (*service.ExportResult, error)
}

// ReportHandler exposes the overallocation report and its downloads.
type ReportHandler struct {
	reports  overallocationReportService
	exporter reportExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports overallocationReportService, exporter reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter}
}

// Overallocation godoc
// @Summary People over the allocation tolerance
// @Description Defaults to active people over the next 90 days.
// @Tags Reports
// @Produce json
// @Param profile query []string false "Profile filter" collectionFormat(multi)
// @Param status query []string false "Status filter (active, inactive)" collectionFormat(multi)
// @Param contract_type query []string false "Contract type filter" collectionFormat(multi)
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/overallocation [get]
func (h *ReportHandler) Overallocation(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.OverallocationReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	report, hit, err := h.reports.OverallocationReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: report.PeopleTotal}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 {
		pagination.PageSize = len(report.People)
	}
	response.JSON(c, http.StatusOK, report, pagination, metaWithCache(c, hit))
}

// Export godoc
// @Summary Download the overallocation report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param profile query []string false "Profile filter" collectionFormat(multi)
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param contract_type query []string false "Contract type filter" collectionFormat(multi)
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/overallocation/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.exporter.Overallocation(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
