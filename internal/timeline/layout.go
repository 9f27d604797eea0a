package timeline

import (
	"fmt"

	"github.com/noah-isme/staffplan-api/internal/models"
)

// Interaction is the transient pointer state a layout pass must respect.
type Interaction struct {
	// DraggingID names the bar under an active drag; its sticky label is
	// suppressed so it does not fight the drag's own positioning.
	DraggingID string `json:"dragging_id,omitempty"`
}

// PlacedBar is one rendered assignment.
type PlacedBar struct {
	Assignment models.Assignment `json:"assignment"`
	Project    models.Project    `json:"project"`
	Rect       BarRect           `json:"rect"`
	Lane       int               `json:"lane"`
	Sticky     StickyInfo        `json:"sticky"`
}

// Row is the layout of one person.
type Row struct {
	Person   models.Person `json:"person"`
	TopPx    float64       `json:"top_px"`
	HeightPx float64       `json:"height_px"`
	Lanes    int           `json:"lanes"`
	Bars     []PlacedBar   `json:"bars"`
	Overflow Overflow      `json:"overflow"`
}

// Layout places every person's assignments on the grid. Rows are stacked in
// the order of people; bars within a row follow lane packing order. Bars
// outside the visible slice or hidden by the lane cap are not emitted.
func Layout(people []models.Person, projects []models.Project, assignments []models.Assignment, vp Viewport, cfg LayoutConfig, interaction Interaction) ([]Row, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	projectByID := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}
	byPerson := make(map[string][]models.Assignment, len(people))
	for _, p := range people {
		byPerson[p.ID] = nil
	}
	for _, a := range assignments {
		if _, ok := byPerson[a.PersonID]; !ok {
			return nil, fmt.Errorf("assignment %s: %w: person %s", a.ID, ErrMissingReference, a.PersonID)
		}
		if _, ok := projectByID[a.ProjectID]; !ok {
			return nil, fmt.Errorf("assignment %s: %w: project %s", a.ID, ErrMissingReference, a.ProjectID)
		}
		if a.StartDay.After(a.EndDay) {
			return nil, fmt.Errorf("assignment %s: %w", a.ID, ErrInvalidRange)
		}
		byPerson[a.PersonID] = append(byPerson[a.PersonID], a)
	}

	visible := vp.VisibleRange(cfg.VisibleMarginPx)
	rows := make([]Row, 0, len(people))
	top := 0.0
	for _, person := range people {
		own := byPerson[person.ID]
		packing := PackLanes(own, visible, cfg)
		byID := make(map[string]models.Assignment, len(own))
		for _, a := range own {
			byID[a.ID] = a
		}

		row := Row{
			Person:   person,
			TopPx:    top,
			HeightPx: packing.HeightPx,
			Lanes:    packing.VisibleLanes,
			Bars:     make([]PlacedBar, 0, len(packing.Order)),
			Overflow: packing.Overflow,
		}
		for _, id := range packing.Order {
			if packing.Hidden(id) {
				continue
			}
			a := byID[id]
			lane := packing.Lanes[id]
			rect, err := Bar(a, vp, cfg, TopPx(lane, cfg), cfg.BarHeightPx)
			if err != nil {
				return nil, err
			}
			sticky := Sticky(rect, vp, cfg)
			if interaction.DraggingID == id {
				sticky = NonSticky(rect)
			}
			row.Bars = append(row.Bars, PlacedBar{
				Assignment: a,
				Project:    projectByID[a.ProjectID],
				Rect:       rect,
				Lane:       lane,
				Sticky:     sticky,
			})
		}
		rows = append(rows, row)
		top += row.HeightPx
	}
	return rows, nil
}

// FilterResolvable drops assignments whose person or project is unknown, for
// callers that prefer skipping a bar to failing the pass.
func FilterResolvable(people []models.Person, projects []models.Project, assignments []models.Assignment) ([]models.Assignment, []string) {
	personIDs := make(map[string]struct{}, len(people))
	for _, p := range people {
		personIDs[p.ID] = struct{}{}
	}
	projectIDs := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		projectIDs[p.ID] = struct{}{}
	}
	kept := make([]models.Assignment, 0, len(assignments))
	var dropped []string
	for _, a := range assignments {
		_, personOK := personIDs[a.PersonID]
		_, projectOK := projectIDs[a.ProjectID]
		if personOK && projectOK {
			kept = append(kept, a)
			continue
		}
		dropped = append(dropped, a.ID)
	}
	return kept, dropped
}
