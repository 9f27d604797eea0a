package timeline

import (
	"sort"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// Overflow summarises bars hidden because their lane is past MaxLanes.
type Overflow struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids,omitempty"`
}

// RowPacking is the lane assignment of one row for one visible slice.
type RowPacking struct {
	// Lanes maps assignment id to its 0-based lane. Hidden bars keep their
	// lane here so callers can tell how deep they sit.
	Lanes map[string]int `json:"lanes"`
	// Order lists the packed assignment ids by start day, ties in input order.
	Order []string `json:"order"`
	// LaneCount is the max concurrency observed on the visible slice.
	LaneCount int `json:"lane_count"`
	// VisibleLanes is LaneCount capped at MaxLanes.
	VisibleLanes int      `json:"visible_lanes"`
	Overflow     Overflow `json:"overflow"`
	HeightPx     float64  `json:"height_px"`
}

// Hidden reports whether the assignment collapsed into the overflow marker.
func (p RowPacking) Hidden(id string) bool {
	lane, ok := p.Lanes[id]
	return ok && lane >= p.VisibleLanes
}

type clipped struct {
	index int
	id    string
	start calendarday.Day
	end   calendarday.Day
}

// PackLanes assigns lanes to the assignments of one row that touch the visible
// slice. Each assignment is clipped to the slice, processed by start day, and
// placed on the smallest lane whose previous occupant ended before it starts.
// Greedy packing by start order uses exactly as many lanes as the maximum
// number of bars active on one visible day.
func PackLanes(assignments []models.Assignment, visible calendarday.Range, cfg LayoutConfig) RowPacking {
	items := make([]clipped, 0, len(assignments))
	for i, a := range assignments {
		span, err := a.Span()
		if err != nil {
			continue
		}
		part, ok := visible.Intersect(span)
		if !ok {
			continue
		}
		items = append(items, clipped{index: i, id: a.ID, start: part.Start(), end: part.End()})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].start.Before(items[j].start)
	})

	packing := RowPacking{Lanes: make(map[string]int, len(items)), Order: make([]string, 0, len(items))}
	var laneEnds []calendarday.Day
	for _, item := range items {
		lane := -1
		for l, end := range laneEnds {
			if end.Before(item.start) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, item.end)
		} else {
			laneEnds[lane] = item.end
		}
		packing.Lanes[item.id] = lane
		packing.Order = append(packing.Order, item.id)
	}

	packing.LaneCount = len(laneEnds)
	packing.VisibleLanes = packing.LaneCount
	if packing.VisibleLanes > cfg.MaxLanes {
		packing.VisibleLanes = cfg.MaxLanes
	}
	for _, id := range packing.Order {
		if packing.Lanes[id] >= packing.VisibleLanes {
			packing.Overflow.Count++
			packing.Overflow.IDs = append(packing.Overflow.IDs, id)
		}
	}
	packing.HeightPx = RowHeight(packing.VisibleLanes, cfg)
	return packing
}

// TopPx is the y offset of a lane inside its row.
func TopPx(lane int, cfg LayoutConfig) float64 {
	return cfg.BasePaddingPx + float64(lane)*(cfg.BarHeightPx+cfg.BarSpacingPx)
}

// RowHeight sizes a row for the given number of stacked bars.
func RowHeight(lanes int, cfg LayoutConfig) float64 {
	if lanes <= 0 {
		return cfg.MinRowHeightPx
	}
	h := cfg.BasePaddingPx*2 + float64(lanes)*cfg.BarHeightPx + float64(lanes-1)*cfg.BarSpacingPx
	if h < cfg.MinRowHeightPx {
		return cfg.MinRowHeightPx
	}
	return h
}

// MaxConcurrency is the largest number of assignments active on one day of rng.
func MaxConcurrency(assignments []models.Assignment, rng calendarday.Range) int {
	counts := make([]int, rng.Len()+1)
	for _, a := range assignments {
		span, err := a.Span()
		if err != nil {
			continue
		}
		part, ok := rng.Intersect(span)
		if !ok {
			continue
		}
		counts[rng.Index(part.Start())]++
		counts[rng.Index(part.End())+1]--
	}
	best, running := 0, 0
	for _, c := range counts[:len(counts)-1] {
		running += c
		if running > best {
			best = running
		}
	}
	return best
}
