package timeline

import (
	"math"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// DragMode says which part of a bar a drag moves.
type DragMode string

const (
	DragMove        DragMode = "move"
	DragResizeStart DragMode = "resize_start"
	DragResizeEnd   DragMode = "resize_end"
)

// Snap quantizes a horizontal drag delta to whole day widths.
func Snap(deltaPx, dayWidthPx float64) float64 {
	return float64(SnapDays(deltaPx, dayWidthPx)) * dayWidthPx
}

// SnapDays is the whole number of days a drag delta lands on. Halves round
// toward positive infinity, so -0.5 days stays put and +0.5 moves one day.
func SnapDays(deltaPx, dayWidthPx float64) int {
	if dayWidthPx <= 0 {
		return 0
	}
	return int(math.Floor(deltaPx/dayWidthPx + 0.5))
}

// Apply returns a copy of a with the drag delta applied in the given mode.
// Resizes never cross the opposite edge; the bar shrinks to a single day.
func Apply(a models.Assignment, mode DragMode, deltaPx, dayWidthPx float64) models.Assignment {
	days := SnapDays(deltaPx, dayWidthPx)
	switch mode {
	case DragMove:
		a.StartDay = calendarday.AddDays(a.StartDay, days)
		a.EndDay = calendarday.AddDays(a.EndDay, days)
	case DragResizeStart:
		a.StartDay = calendarday.Min(calendarday.AddDays(a.StartDay, days), a.EndDay)
	case DragResizeEnd:
		a.EndDay = calendarday.Max(calendarday.AddDays(a.EndDay, days), a.StartDay)
	}
	return a
}

// Move shifts the whole assignment.
func Move(a models.Assignment, deltaPx, dayWidthPx float64) models.Assignment {
	return Apply(a, DragMove, deltaPx, dayWidthPx)
}

// ResizeStart moves only the start edge.
func ResizeStart(a models.Assignment, deltaPx, dayWidthPx float64) models.Assignment {
	return Apply(a, DragResizeStart, deltaPx, dayWidthPx)
}

// ResizeEnd moves only the end edge.
func ResizeEnd(a models.Assignment, deltaPx, dayWidthPx float64) models.Assignment {
	return Apply(a, DragResizeEnd, deltaPx, dayWidthPx)
}

// Select turns a drag across day cells into an inclusive day range, whichever
// direction the pointer moved.
func Select(windowStart calendarday.Day, downIdx, moveIdx int) (calendarday.Day, calendarday.Day) {
	lo, hi := downIdx, moveIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	return calendarday.AddDays(windowStart, lo), calendarday.AddDays(windowStart, hi)
}
