package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staffplan-api/internal/dto"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/response"
)

type timelineService interface {
	Layout(ctx context.Context, req dto.LayoutRequest) (*dto.LayoutResponse, error)
	LayoutForFilter(ctx context.Context, query dto.TimelineQuery) (*dto.LayoutResponse, bool, error)
	Snap(ctx context.Context, req dto.SnapRequest) (*dto.SnapResponse, error)
	Select(ctx context.Context, req dto.SelectionRequest) (*dto.SelectionResponse, error)
	Expand(ctx context.Context, req dto.ExpandRequest) (*dto.ExpandResponse, error)
}

// TimelineHandler serves grid layouts and the interaction helpers.
type TimelineHandler struct {
	service timelineService
}

// NewTimelineHandler constructs the handler.
func NewTimelineHandler(service timelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// Layout godoc
// @Summary Lay out caller-supplied assignments
// @Tags Timeline
// @Accept json
// @Produce json
// @Param payload body dto.LayoutRequest true "People, projects, assignments and viewport"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timeline/layout [post]
func (h *TimelineHandler) Layout(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Layout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Timeline godoc
// @Summary Lay out stored assignments for a window
// @Tags Timeline
// @Produce json
// @Param window_start query string true "First materialized day (YYYY-MM-DD)"
// @Param window_end query string true "Last materialized day (YYYY-MM-DD)"
// @Param day_width query number false "Pixels per day"
// @Param scroll_left query number false "Horizontal scroll offset"
// @Param visible_width query number false "Width of the scrolling pane"
// @Param sidebar_width query number false "Width of the sticky sidebar"
// @Param dragging_id query string false "Assignment under an active drag"
// @Param profile query []string false "Profile filter" collectionFormat(multi)
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param contract_type query []string false "Contract type filter" collectionFormat(multi)
// @Param overallocated_only query bool false "Only people over the tolerance"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeline [get]
func (h *TimelineHandler) Timeline(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.TimelineQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, hit, err := h.service.LayoutForFilter(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, metaWithCache(c, hit))
}

// Snap godoc
// @Summary Snap a drag or resize to whole days
// @Tags Timeline
// @Accept json
// @Produce json
// @Param payload body dto.SnapRequest true "Drag delta"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeline/snap [post]
func (h *TimelineHandler) Snap(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.SnapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Snap(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Selection godoc
// @Summary Convert a pointer drag into a day range
// @Tags Timeline
// @Accept json
// @Produce json
// @Param payload body dto.SelectionRequest true "Pointer offsets"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeline/selection [post]
func (h *TimelineHandler) Selection(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Select(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Expand godoc
// @Summary Grow the materialized window
// @Tags Timeline
// @Accept json
// @Produce json
// @Param payload body dto.ExpandRequest true "Direction and months"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeline/expand [post]
func (h *TimelineHandler) Expand(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Expand(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
