package timeline

import "math"

// StickyInfo places a bar's label relative to the bar's own left edge.
type StickyInfo struct {
	LabelLeftPx     float64 `json:"label_left_px"`
	LabelMaxWidthPx float64 `json:"label_max_width_px"`
	IsSticky        bool    `json:"is_sticky"`
}

// Sticky keeps the label of a bar visible while the bar's left edge has
// scrolled behind the frozen sidebar. It depends only on its inputs.
func Sticky(bar BarRect, vp Viewport, cfg LayoutConfig) StickyInfo {
	viewportLeft := vp.ScrollLeftPx + vp.SidebarWidthPx - cfg.StickyLookaheadPx
	right := bar.Right()
	if !(bar.LeftPx < viewportLeft && viewportLeft < right) {
		return NonSticky(bar)
	}

	labelLeft := viewportLeft - bar.LeftPx + cfg.StickyOffsetPx
	maxWidth := math.Max(right-(viewportLeft+cfg.StickyOffsetPx), cfg.MinLabelWidthPx)
	if labelLeft+maxWidth > bar.WidthPx {
		labelLeft = math.Max(0, bar.WidthPx-maxWidth)
		maxWidth = bar.WidthPx - labelLeft
	}
	return StickyInfo{LabelLeftPx: labelLeft, LabelMaxWidthPx: maxWidth, IsSticky: true}
}

// NonSticky gives the label the bar's full width.
func NonSticky(bar BarRect) StickyInfo {
	return StickyInfo{LabelLeftPx: 0, LabelMaxWidthPx: bar.WidthPx}
}
