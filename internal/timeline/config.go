// Package timeline lays assignments out as bars on a people-by-days grid.
// Every function is a pure computation over a Viewport snapshot.
package timeline

import "errors"

var (
	// ErrInvalidRange reports an assignment whose start is after its end.
	ErrInvalidRange = errors.New("invalid assignment range")
	// ErrOutsideWindow reports an assignment that does not touch the materialized window.
	ErrOutsideWindow = errors.New("assignment outside window")
	// ErrMissingReference reports an assignment whose person or project is unknown.
	ErrMissingReference = errors.New("missing reference")
	// ErrInvalidViewport reports a viewport with a reversed window or non-positive day width.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// LayoutConfig holds the pixel constants of the grid.
type LayoutConfig struct {
	// MinBarWidthPx keeps short assignments legible and clickable.
	MinBarWidthPx  float64 `json:"min_bar_width_px" yaml:"min_bar_width_px"`
	BarHeightPx    float64 `json:"bar_height_px" yaml:"bar_height_px"`
	BarSpacingPx   float64 `json:"bar_spacing_px" yaml:"bar_spacing_px"`
	BasePaddingPx  float64 `json:"base_padding_px" yaml:"base_padding_px"`
	MinRowHeightPx float64 `json:"min_row_height_px" yaml:"min_row_height_px"`
	// MaxLanes caps row growth; deeper lanes collapse into an overflow marker.
	MaxLanes int `json:"max_lanes" yaml:"max_lanes"`
	// VisibleMarginPx widens the visible slice on both sides so rows do not
	// pop while scrolling.
	VisibleMarginPx float64 `json:"visible_margin_px" yaml:"visible_margin_px"`
	// StickyLookaheadPx starts sliding labels before the bar edge reaches the sidebar.
	StickyLookaheadPx float64 `json:"sticky_lookahead_px" yaml:"sticky_lookahead_px"`
	StickyOffsetPx    float64 `json:"sticky_offset_px" yaml:"sticky_offset_px"`
	MinLabelWidthPx   float64 `json:"min_label_width_px" yaml:"min_label_width_px"`
}

// DefaultLayoutConfig returns the stock grid constants.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MinBarWidthPx:     80,
		BarHeightPx:       28,
		BarSpacingPx:      4,
		BasePaddingPx:     8,
		MinRowHeightPx:    48,
		MaxLanes:          4,
		VisibleMarginPx:   200,
		StickyLookaheadPx: 240,
		StickyOffsetPx:    8,
		MinLabelWidthPx:   60,
	}
}

// WithDefaults fills zero fields from DefaultLayoutConfig.
func (c LayoutConfig) WithDefaults() LayoutConfig {
	d := DefaultLayoutConfig()
	if c == (LayoutConfig{}) {
		return d
	}
	if c.MinBarWidthPx <= 0 {
		c.MinBarWidthPx = d.MinBarWidthPx
	}
	if c.BarHeightPx <= 0 {
		c.BarHeightPx = d.BarHeightPx
	}
	if c.BarSpacingPx < 0 {
		c.BarSpacingPx = d.BarSpacingPx
	}
	if c.BasePaddingPx < 0 {
		c.BasePaddingPx = d.BasePaddingPx
	}
	if c.MinRowHeightPx <= 0 {
		c.MinRowHeightPx = d.MinRowHeightPx
	}
	if c.MaxLanes <= 0 {
		c.MaxLanes = d.MaxLanes
	}
	if c.VisibleMarginPx < 0 {
		c.VisibleMarginPx = d.VisibleMarginPx
	}
	if c.StickyLookaheadPx < 0 {
		c.StickyLookaheadPx = d.StickyLookaheadPx
	}
	if c.StickyOffsetPx < 0 {
		c.StickyOffsetPx = d.StickyOffsetPx
	}
	if c.MinLabelWidthPx <= 0 {
		c.MinLabelWidthPx = d.MinLabelWidthPx
	}
	return c
}
