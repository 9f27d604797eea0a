package timeline

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

func day(s string) calendarday.Day {
	return calendarday.MustParse(s)
}

func assignment(id, person, project, start, end string) models.Assignment {
	return models.Assignment{ID: id, PersonID: person, ProjectID: project, StartDay: day(start), EndDay: day(end), Allocation: 0.5}
}

func quarterViewport(t *testing.T) Viewport {
	t.Helper()
	vp, err := NewViewport(day("2024-01-01"), day("2024-03-31"), 40)
	require.NoError(t, err)
	return vp
}

func TestBarScenarioB(t *testing.T) {
	vp := quarterViewport(t)
	cfg := DefaultLayoutConfig()
	a := assignment("a1", "p1", "pr1", "2024-02-10", "2024-02-12")

	rect, err := Bar(a, vp, cfg, 8, 28)
	require.NoError(t, err)
	assert.Equal(t, 1600.0, rect.LeftPx)
	assert.Equal(t, 120.0, rect.WidthPx)
	assert.Equal(t, 8.0, rect.TopPx)
	assert.Equal(t, 28.0, rect.HeightPx)
}

func TestBarIsIdempotent(t *testing.T) {
	vp := quarterViewport(t)
	cfg := DefaultLayoutConfig()
	a := assignment("a1", "p1", "pr1", "2024-01-17", "2024-03-02")

	first, err := Bar(a, vp, cfg, 0, 28)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := Bar(a, vp, cfg, 0, 28)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	assert.Equal(t, float64(calendarday.Diff(vp.WindowStart, a.StartDay))*vp.DayWidthPx, first.LeftPx)
}

func TestBarMinimumWidthAndClamping(t *testing.T) {
	vp, err := NewViewport(day("2024-01-01"), day("2024-03-31"), 10)
	require.NoError(t, err)
	cfg := DefaultLayoutConfig()

	short, err := Bar(assignment("a1", "p1", "pr1", "2024-01-05", "2024-01-05"), vp, cfg, 0, 28)
	require.NoError(t, err)
	assert.Equal(t, cfg.MinBarWidthPx, short.WidthPx)

	clipped, err := Bar(assignment("a2", "p1", "pr1", "2023-12-01", "2024-01-10"), vp, cfg, 0, 28)
	require.NoError(t, err)
	assert.Equal(t, 0.0, clipped.LeftPx)
	assert.Equal(t, 100.0, clipped.WidthPx)

	_, err = Bar(assignment("a3", "p1", "pr1", "2024-05-01", "2024-05-02"), vp, cfg, 0, 28)
	assert.ErrorIs(t, err, ErrOutsideWindow)

	_, err = Bar(assignment("a4", "p1", "pr1", "2024-02-02", "2024-02-01"), vp, cfg, 0, 28)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestPackLanesScenarioC(t *testing.T) {
	cfg := DefaultLayoutConfig()
	list := []models.Assignment{
		assignment("a1", "p1", "pr1", "2024-04-10", "2024-04-15"),
		assignment("a2", "p1", "pr1", "2024-04-15", "2024-04-15"),
		assignment("a3", "p1", "pr1", "2024-04-15", "2024-04-20"),
	}

	full := PackLanes(list, calendarday.MustRange(day("2024-04-01"), day("2024-04-30")), cfg)
	assert.Equal(t, 3, full.LaneCount)
	assert.Equal(t, map[string]int{"a1": 0, "a2": 1, "a3": 2}, full.Lanes)
	assert.Equal(t, RowHeight(3, cfg), full.HeightPx)
	assert.Equal(t, 108.0, full.HeightPx)

	later := PackLanes(list, calendarday.MustRange(day("2024-04-16"), day("2024-04-30")), cfg)
	assert.Equal(t, 1, later.LaneCount)
	assert.Equal(t, []string{"a3"}, later.Order)
	assert.Equal(t, cfg.MinRowHeightPx, later.HeightPx)
	assert.Less(t, later.HeightPx, full.HeightPx)

	assert.Equal(t, 3, MaxConcurrency(list, calendarday.MustRange(day("2024-04-01"), day("2024-04-30"))))
	assert.Equal(t, 1, MaxConcurrency(list, calendarday.MustRange(day("2024-04-16"), day("2024-04-30"))))
}

func TestPackLanesNeverCollides(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.MaxLanes = 100
	window := calendarday.MustRange(day("2024-01-01"), day("2024-06-30"))
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		var list []models.Assignment
		for i := 0; i < 25; i++ {
			start := calendarday.AddDays(window.Start(), rng.Intn(window.Len()))
			end := calendarday.Min(calendarday.AddDays(start, rng.Intn(30)), window.End())
			list = append(list, models.Assignment{ID: fmt.Sprintf("a%d", i), PersonID: "p1", StartDay: start, EndDay: end})
		}
		packing := PackLanes(list, window, cfg)
		require.Equal(t, MaxConcurrency(list, window), packing.LaneCount)

		for i := range list {
			for j := i + 1; j < len(list); j++ {
				if packing.Lanes[list[i].ID] != packing.Lanes[list[j].ID] {
					continue
				}
				si, _ := list[i].Span()
				sj, _ := list[j].Span()
				require.False(t, si.Overlaps(sj), "%s and %s share lane %d", list[i].ID, list[j].ID, packing.Lanes[list[i].ID])
			}
		}
	}
}

func TestPackLanesStableTieBreak(t *testing.T) {
	cfg := DefaultLayoutConfig()
	list := []models.Assignment{
		assignment("b", "p1", "pr1", "2024-01-01", "2024-01-03"),
		assignment("a", "p1", "pr1", "2024-01-01", "2024-01-03"),
	}
	packing := PackLanes(list, calendarday.MustRange(day("2024-01-01"), day("2024-01-31")), cfg)
	assert.Equal(t, []string{"b", "a"}, packing.Order)
	assert.Equal(t, 0, packing.Lanes["b"])
	assert.Equal(t, 1, packing.Lanes["a"])
}

func TestPackLanesOverflow(t *testing.T) {
	cfg := DefaultLayoutConfig()
	var list []models.Assignment
	for i := 0; i < 6; i++ {
		list = append(list, assignment(fmt.Sprintf("a%d", i), "p1", "pr1", "2024-01-10", "2024-01-12"))
	}
	packing := PackLanes(list, calendarday.MustRange(day("2024-01-01"), day("2024-01-31")), cfg)
	assert.Equal(t, 6, packing.LaneCount)
	assert.Equal(t, cfg.MaxLanes, packing.VisibleLanes)
	assert.Equal(t, 2, packing.Overflow.Count)
	assert.Equal(t, []string{"a4", "a5"}, packing.Overflow.IDs)
	assert.True(t, packing.Hidden("a5"))
	assert.False(t, packing.Hidden("a0"))
	assert.Equal(t, RowHeight(cfg.MaxLanes, cfg), packing.HeightPx)
}

func TestTopPx(t *testing.T) {
	cfg := DefaultLayoutConfig()
	assert.Equal(t, 8.0, TopPx(0, cfg))
	assert.Equal(t, 40.0, TopPx(1, cfg))
	assert.Equal(t, 72.0, TopPx(2, cfg))
}

func TestLayoutStacksRows(t *testing.T) {
	vp := quarterViewport(t)
	cfg := DefaultLayoutConfig()
	people := []models.Person{{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Budi"}}
	projects := []models.Project{{ID: "pr1", Name: "Apollo"}}
	list := []models.Assignment{
		assignment("a1", "p1", "pr1", "2024-01-05", "2024-01-20"),
		assignment("a2", "p1", "pr1", "2024-01-10", "2024-01-25"),
		assignment("a3", "p2", "pr1", "2024-02-01", "2024-02-03"),
	}

	rows, err := Layout(people, projects, list, vp, cfg, Interaction{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0.0, rows[0].TopPx)
	assert.Equal(t, 2, rows[0].Lanes)
	require.Len(t, rows[0].Bars, 2)
	assert.Equal(t, "Apollo", rows[0].Bars[0].Project.Name)
	assert.Equal(t, TopPx(1, cfg), rows[0].Bars[1].Rect.TopPx)

	assert.Equal(t, rows[0].HeightPx, rows[1].TopPx)
	require.Len(t, rows[1].Bars, 1)
	assert.Equal(t, 31*40.0, rows[1].Bars[0].Rect.LeftPx)
}

func TestLayoutMissingReference(t *testing.T) {
	vp := quarterViewport(t)
	people := []models.Person{{ID: "p1"}}
	projects := []models.Project{{ID: "pr1"}}

	_, err := Layout(people, projects, []models.Assignment{assignment("a1", "ghost", "pr1", "2024-01-01", "2024-01-02")}, vp, DefaultLayoutConfig(), Interaction{})
	assert.True(t, errors.Is(err, ErrMissingReference))

	_, err = Layout(people, projects, []models.Assignment{assignment("a1", "p1", "gone", "2024-01-01", "2024-01-02")}, vp, DefaultLayoutConfig(), Interaction{})
	assert.True(t, errors.Is(err, ErrMissingReference))

	kept, dropped := FilterResolvable(people, projects, []models.Assignment{
		assignment("a1", "p1", "pr1", "2024-01-01", "2024-01-02"),
		assignment("a2", "ghost", "pr1", "2024-01-01", "2024-01-02"),
	})
	assert.Len(t, kept, 1)
	assert.Equal(t, []string{"a2"}, dropped)
}

func TestLayoutSuppressesStickyWhileDragging(t *testing.T) {
	vp := quarterViewport(t).WithScroll(1900)
	cfg := DefaultLayoutConfig()
	people := []models.Person{{ID: "p1"}}
	projects := []models.Project{{ID: "pr1"}}
	list := []models.Assignment{assignment("a1", "p1", "pr1", "2024-02-10", "2024-02-12")}

	rows, err := Layout(people, projects, list, vp, cfg, Interaction{})
	require.NoError(t, err)
	assert.True(t, rows[0].Bars[0].Sticky.IsSticky)

	rows, err = Layout(people, projects, list, vp, cfg, Interaction{DraggingID: "a1"})
	require.NoError(t, err)
	assert.False(t, rows[0].Bars[0].Sticky.IsSticky)
	assert.Equal(t, rows[0].Bars[0].Rect.WidthPx, rows[0].Bars[0].Sticky.LabelMaxWidthPx)
}

func TestLayoutRejectsInvalidViewport(t *testing.T) {
	_, err := Layout(nil, nil, nil, Viewport{WindowStart: day("2024-02-01"), WindowEnd: day("2024-01-01"), DayWidthPx: 40}, DefaultLayoutConfig(), Interaction{})
	assert.ErrorIs(t, err, ErrInvalidViewport)
}
