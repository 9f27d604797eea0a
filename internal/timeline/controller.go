package timeline

import (
	"errors"
	"sync"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

var (
	// ErrDragInProgress reports a second pointer trying to start a drag.
	ErrDragInProgress = errors.New("drag already in progress")
	// ErrNoDragSession reports a drag update from a pointer that holds no session.
	ErrNoDragSession = errors.New("no active drag session")
)

// Frame is what subscribers receive once per tick.
type Frame struct {
	Viewport    Viewport    `json:"viewport"`
	Interaction Interaction `json:"interaction"`
}

// DragResult is the snapped outcome of a finished drag.
type DragResult struct {
	Original models.Assignment `json:"original"`
	Updated  models.Assignment `json:"updated"`
	DeltaPx  float64           `json:"delta_px"`
	Mode     DragMode          `json:"mode"`
}

type dragSession struct {
	pointerID  string
	mode       DragMode
	assignment models.Assignment
	deltaPx    float64
}

type selectionSession struct {
	downIdx int
	moveIdx int
}

// Controller owns the live viewport of one timeline screen. Scroll and resize
// only record state; Tick publishes at most one frame per call, so callers
// drive it at animation-frame rate. Expansion is the heavy path and re-anchors
// the scroll offset once.
type Controller struct {
	mu          sync.Mutex
	vp          Viewport
	dirty       bool
	nextID      int
	subscribers map[int]func(Frame)
	drag        *dragSession
	selection   *selectionSession
}

// NewController starts a controller on vp.
func NewController(vp Viewport) (*Controller, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	return &Controller{vp: vp, dirty: true, subscribers: make(map[int]func(Frame))}, nil
}

// Viewport returns the current viewport snapshot.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp
}

// Subscribe registers fn for frame notifications. The returned func removes
// it; calling it more than once is harmless.
func (c *Controller) Subscribe(fn func(Frame)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Scroll records a new scroll offset.
func (c *Controller) Scroll(px float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vp.WithScroll(px)
	if next != c.vp {
		c.vp = next
		c.dirty = true
	}
}

// Resize records a new pane width.
func (c *Controller) Resize(widthPx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vp.WithVisibleWidth(widthPx)
	if next != c.vp {
		c.vp = next
		c.dirty = true
	}
}

// Expand grows the window and compensates the scroll offset for prepended days.
func (c *Controller) Expand(direction Direction, months int) Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, added := c.vp.Expand(direction, months)
	next = next.Reanchor(added)
	if c.selection != nil {
		// Selection indices count from WindowStart, which just moved.
		c.selection.downIdx += added
		c.selection.moveIdx += added
	}
	if next != c.vp {
		c.vp = next
		c.dirty = true
	}
	return c.vp
}

// Tick publishes one frame if anything changed since the previous tick.
// It reports whether a frame was published.
func (c *Controller) Tick() bool {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return false
	}
	c.dirty = false
	frame := c.frameLocked()
	subs := make([]func(Frame), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(frame)
	}
	return true
}

func (c *Controller) frameLocked() Frame {
	f := Frame{Viewport: c.vp}
	if c.drag != nil {
		f.Interaction.DraggingID = c.drag.assignment.ID
	}
	return f
}

// BeginDrag opens the exclusive drag session for pointerID.
func (c *Controller) BeginDrag(pointerID string, a models.Assignment, mode DragMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		return ErrDragInProgress
	}
	c.selection = nil
	c.drag = &dragSession{pointerID: pointerID, mode: mode, assignment: a}
	c.dirty = true
	return nil
}

// DragTo updates the raw pointer delta and returns the snapped preview.
func (c *Controller) DragTo(pointerID string, deltaPx float64) (models.Assignment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil || c.drag.pointerID != pointerID {
		return models.Assignment{}, ErrNoDragSession
	}
	c.drag.deltaPx = deltaPx
	c.dirty = true
	return Apply(c.drag.assignment, c.drag.mode, deltaPx, c.vp.DayWidthPx), nil
}

// EndDrag closes the session on pointer release and returns the snapped result.
func (c *Controller) EndDrag(pointerID string) (DragResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil || c.drag.pointerID != pointerID {
		return DragResult{}, ErrNoDragSession
	}
	s := c.drag
	c.drag = nil
	c.dirty = true
	return DragResult{
		Original: s.assignment,
		Updated:  Apply(s.assignment, s.mode, s.deltaPx, c.vp.DayWidthPx),
		DeltaPx:  Snap(s.deltaPx, c.vp.DayWidthPx),
		Mode:     s.mode,
	}, nil
}

// Dragging reports the id of the bar under drag, if any.
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", false
	}
	return c.drag.assignment.ID, true
}

// BeginSelection starts drawing a new assignment at the day under px.
func (c *Controller) BeginSelection(px float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		return
	}
	idx := c.vp.DayIndexAt(px)
	c.selection = &selectionSession{downIdx: idx, moveIdx: idx}
}

// ExtendSelection moves the free end of the selection to the day under px.
func (c *Controller) ExtendSelection(px float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return
	}
	c.selection.moveIdx = c.vp.DayIndexAt(px)
}

// EndSelection closes the selection and returns its inclusive day range.
func (c *Controller) EndSelection() (calendarday.Day, calendarday.Day, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return calendarday.Day{}, calendarday.Day{}, false
	}
	s := c.selection
	c.selection = nil
	start, end := Select(c.vp.WindowStart, s.downIdx, s.moveIdx)
	return start, end, true
}

// Cancel abandons any drag or selection without applying it.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		c.dirty = true
	}
	c.drag = nil
	c.selection = nil
}
