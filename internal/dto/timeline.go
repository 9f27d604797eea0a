package dto

import (
	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// LayoutRequest lays out caller-supplied data without touching storage.
type LayoutRequest struct {
	People      []models.Person     `json:"people"`
	Projects    []models.Project    `json:"projects"`
	Assignments []models.Assignment `json:"assignments"`
	Viewport    timeline.Viewport   `json:"viewport"`
	DraggingID  string              `json:"dragging_id,omitempty"`
	// SkipUnresolved drops assignments with unknown people or projects
	// instead of rejecting the request.
	SkipUnresolved bool `json:"skip_unresolved,omitempty"`
}

// LayoutResponse is the rendered grid.
type LayoutResponse struct {
	Viewport      timeline.Viewport `json:"viewport"`
	VisibleStart  calendarday.Day   `json:"visible_start"`
	VisibleEnd    calendarday.Day   `json:"visible_end"`
	TotalWidthPx  float64           `json:"total_width_px"`
	TotalHeightPx float64           `json:"total_height_px"`
	Rows          []timeline.Row    `json:"rows"`
	Dropped       []string          `json:"dropped,omitempty"`
}

// TimelineQuery is the query-string form of a storage-backed layout.
type TimelineQuery struct {
	PlanningFilterQuery
	WindowStart    string  `form:"window_start" validate:"required,calendarday"`
	WindowEnd      string  `form:"window_end" validate:"required,calendarday"`
	DayWidthPx     float64 `form:"day_width" validate:"omitempty,gt=0"`
	ScrollLeftPx   float64 `form:"scroll_left" validate:"gte=0"`
	VisibleWidthPx float64 `form:"visible_width" validate:"gte=0"`
	SidebarWidthPx float64 `form:"sidebar_width" validate:"gte=0"`
	DraggingID     string  `form:"dragging_id"`
}

// SnapRequest previews a drag or resize snapped to whole days. When Existing
// is supplied the snapped result is also checked for overallocation.
type SnapRequest struct {
	Assignment models.Assignment   `json:"assignment"`
	Mode       timeline.DragMode   `json:"mode" validate:"required,oneof=move resize_start resize_end"`
	DeltaPx    float64             `json:"delta_px"`
	DayWidthPx float64             `json:"day_width_px" validate:"gt=0"`
	Existing   []models.Assignment `json:"existing,omitempty"`
}

// SnapResponse is the snapped assignment.
type SnapResponse struct {
	Assignment     models.Assignment      `json:"assignment"`
	SnappedDeltaPx float64                `json:"snapped_delta_px"`
	DeltaDays      int                    `json:"delta_days"`
	Conflicts      []allocation.DayReport `json:"conflicts,omitempty"`
}

// SelectionRequest turns a pointer drag over empty cells into a day range.
type SelectionRequest struct {
	Viewport timeline.Viewport `json:"viewport"`
	DownPx   float64           `json:"down_px"`
	MovePx   float64           `json:"move_px"`
}

// SelectionResponse is the inclusive range the pointer covered.
type SelectionResponse struct {
	StartDate calendarday.Day `json:"start_date"`
	EndDate   calendarday.Day `json:"end_date"`
	Days      int             `json:"days"`
}

// ExpandRequest grows the materialized window at one edge.
type ExpandRequest struct {
	Viewport  timeline.Viewport  `json:"viewport"`
	Direction timeline.Direction `json:"direction" validate:"required,oneof=start end"`
	Months    int                `json:"months" validate:"required,min=1,max=24"`
}

// ExpandResponse carries the grown viewport with its scroll re-anchored.
type ExpandResponse struct {
	Viewport  timeline.Viewport `json:"viewport"`
	AddedDays int               `json:"added_days"`
}
