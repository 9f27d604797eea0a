package timeline

import (
	"fmt"
	"math"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// BarRect is the pixel rectangle of one bar inside the window.
type BarRect struct {
	LeftPx   float64 `json:"left_px"`
	WidthPx  float64 `json:"width_px"`
	TopPx    float64 `json:"top_px"`
	HeightPx float64 `json:"height_px"`
}

// Right is the x coordinate of the bar's right edge.
func (r BarRect) Right() float64 {
	return r.LeftPx + r.WidthPx
}

// Bar positions a by its date range clamped to the window. top and height come
// from lane packing.
func Bar(a models.Assignment, vp Viewport, cfg LayoutConfig, topPx, heightPx float64) (BarRect, error) {
	span, err := a.Span()
	if err != nil {
		return BarRect{}, fmt.Errorf("assignment %s: %w", a.ID, ErrInvalidRange)
	}
	visible, ok := vp.Window().Intersect(span)
	if !ok {
		return BarRect{}, fmt.Errorf("assignment %s: %w", a.ID, ErrOutsideWindow)
	}
	return rectFor(visible, vp, cfg, topPx, heightPx), nil
}

func rectFor(visible calendarday.Range, vp Viewport, cfg LayoutConfig, topPx, heightPx float64) BarRect {
	left := float64(calendarday.Diff(vp.WindowStart, visible.Start())) * vp.DayWidthPx
	width := math.Max(float64(visible.Len())*vp.DayWidthPx, cfg.MinBarWidthPx)
	return BarRect{LeftPx: left, WidthPx: width, TopPx: topPx, HeightPx: heightPx}
}
