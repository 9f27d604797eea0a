package timeline

import (
	"fmt"
	"math"

	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// Direction selects which edge of the window an expansion grows.
type Direction string

const (
	DirectionStart Direction = "start"
	DirectionEnd   Direction = "end"
)

// Viewport is the materialized day window plus the horizontal scroll state.
// Pixel offsets are measured from the left edge of WindowStart's column.
type Viewport struct {
	WindowStart    calendarday.Day `json:"window_start"`
	WindowEnd      calendarday.Day `json:"window_end"`
	DayWidthPx     float64         `json:"day_width_px"`
	ScrollLeftPx   float64         `json:"scroll_left_px"`
	SidebarWidthPx float64         `json:"sidebar_width_px"`
	// VisibleWidthPx is the width of the scrolling pane, sidebar excluded.
	VisibleWidthPx float64 `json:"visible_width_px"`
}

// NewViewport builds a viewport over [start, end].
func NewViewport(start, end calendarday.Day, dayWidthPx float64) (Viewport, error) {
	vp := Viewport{WindowStart: start, WindowEnd: end, DayWidthPx: dayWidthPx}
	if err := vp.Validate(); err != nil {
		return Viewport{}, err
	}
	return vp, nil
}

// Validate checks the window order and the day width.
func (v Viewport) Validate() error {
	if v.WindowStart.After(v.WindowEnd) {
		return fmt.Errorf("%w: window %s is after %s", ErrInvalidViewport, v.WindowStart, v.WindowEnd)
	}
	if v.DayWidthPx <= 0 || math.IsNaN(v.DayWidthPx) || math.IsInf(v.DayWidthPx, 0) {
		return fmt.Errorf("%w: day width %v", ErrInvalidViewport, v.DayWidthPx)
	}
	return nil
}

// Window returns the materialized day range.
func (v Viewport) Window() calendarday.Range {
	return calendarday.MustRange(v.WindowStart, v.WindowEnd)
}

// Days is the number of materialized day columns.
func (v Viewport) Days() int {
	return calendarday.Diff(v.WindowStart, v.WindowEnd) + 1
}

// TotalWidthPx is the pixel width of the whole materialized window.
func (v Viewport) TotalWidthPx() float64 {
	return float64(v.Days()) * v.DayWidthPx
}

// Expand grows the window by months at one edge and reports how many days were
// prepended. The window never shrinks. The caller re-anchors scroll once with
// Reanchor so the focused day does not jump.
func (v Viewport) Expand(direction Direction, months int) (Viewport, int) {
	if months <= 0 {
		return v, 0
	}
	switch direction {
	case DirectionStart:
		next := calendarday.AddMonths(v.WindowStart, -months)
		added := calendarday.Diff(next, v.WindowStart)
		if added <= 0 {
			return v, 0
		}
		v.WindowStart = next
		return v, added
	case DirectionEnd:
		next := calendarday.AddMonths(v.WindowEnd, months)
		if next.After(v.WindowEnd) {
			v.WindowEnd = next
		}
		return v, 0
	default:
		return v, 0
	}
}

// Reanchor shifts the scroll offset right by the width of addedDays columns.
func (v Viewport) Reanchor(addedDays int) Viewport {
	if addedDays > 0 {
		v.ScrollLeftPx += float64(addedDays) * v.DayWidthPx
	}
	return v
}

// WithScroll returns v scrolled to px, clamped at zero.
func (v Viewport) WithScroll(px float64) Viewport {
	v.ScrollLeftPx = math.Max(0, px)
	return v
}

// WithVisibleWidth returns v with a new pane width.
func (v Viewport) WithVisibleWidth(px float64) Viewport {
	v.VisibleWidthPx = math.Max(0, px)
	return v
}

// DayIndexAt maps an x offset inside the window to a day column index.
func (v Viewport) DayIndexAt(px float64) int {
	idx := int(math.Floor(px / v.DayWidthPx))
	if idx < 0 {
		return 0
	}
	if last := v.Days() - 1; idx > last {
		return last
	}
	return idx
}

// DayAt maps an x offset inside the window to its day.
func (v Viewport) DayAt(px float64) calendarday.Day {
	return calendarday.AddDays(v.WindowStart, v.DayIndexAt(px))
}

// VisibleRange is the slice of days on screen, widened by marginPx on each
// side and clamped to the window. A zero pane width means the whole window.
func (v Viewport) VisibleRange(marginPx float64) calendarday.Range {
	window := v.Window()
	if v.VisibleWidthPx <= 0 {
		return window
	}
	first := int(math.Floor((v.ScrollLeftPx - marginPx) / v.DayWidthPx))
	last := int(math.Ceil((v.ScrollLeftPx+v.VisibleWidthPx+marginPx)/v.DayWidthPx)) - 1
	maxIdx := v.Days() - 1
	if first < 0 {
		first = 0
	}
	if last > maxIdx {
		last = maxIdx
	}
	if first > last {
		first = last
	}
	return calendarday.MustRange(window.At(first), window.At(last))
}
