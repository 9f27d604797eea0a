package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staffplan-api/internal/dto"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/response"
)

type allocationService interface {
	Check(ctx context.Context, req dto.CheckOverallocationRequest) (*dto.OverallocationResponse, error)
	DailyTotals(ctx context.Context, personID string, query dto.DailyTotalsQuery) (*dto.DailyTotalsResponse, error)
	Breakdown(ctx context.Context, personID, day string) (*dto.BreakdownResponse, error)
}

// AllocationHandler exposes per-person load and overallocation checks.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(service allocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// Check godoc
// @Summary Check a candidate assignment for overallocation
// @Description Returns every day on which the person's projected allocation exceeds 105% of one FTE. An empty list means the candidate fits.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.CheckOverallocationRequest true "Candidate assignment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /allocations/check [post]
func (h *AllocationHandler) Check(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.CheckOverallocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// DailyTotals godoc
// @Summary Daily allocation totals of a person
// @Tags Allocations
// @Produce json
// @Param id path string true "Person ID"
// @Param start query string true "First day (YYYY-MM-DD)"
// @Param end query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /people/{id}/allocations [get]
func (h *AllocationHandler) DailyTotals(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DailyTotalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.DailyTotals(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Breakdown godoc
// @Summary Assignments contributing to one day's total
// @Tags Allocations
// @Produce json
// @Param id path string true "Person ID"
// @Param day path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /people/{id}/allocations/{day} [get]
func (h *AllocationHandler) Breakdown(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	result, err := h.service.Breakdown(c.Request.Context(), c.Param("id"), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
