package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

func planningFixture() (*stubPeople, *stubProjects, *stubAssignments) {
	people := &stubPeople{people: []models.Person{
		{ID: "p1", Name: "Ada", Status: models.PersonStatusActive},
		{ID: "p2", Name: "Grace", Status: models.PersonStatusActive},
	}}
	projects := &stubProjects{projects: []models.Project{{ID: "pr1", Name: "Apollo"}, {ID: "pr2", Name: "Gemini"}}}
	assignments := &stubAssignments{assignments: []models.Assignment{
		plannedAssignment("a1", "p1", "pr1", "2024-01-01", "2024-01-10", 0.6),
		plannedAssignment("a2", "p1", "pr2", "2024-01-05", "2024-01-15", 0.6),
		plannedAssignment("a3", "p2", "pr1", "2024-01-03", "2024-01-04", 0.5),
		plannedAssignment("a4", "p2", "pr2", "2024-05-01", "2024-05-04", 0.5),
	}}
	return people, projects, assignments
}

func newTimelineServiceForTest(cache *CacheService) (*TimelineService, *MetricsService) {
	people, projects, assignments := planningFixture()
	metrics := NewMetricsService()
	svc := NewTimelineService(TimelineServiceParams{
		People:      people,
		Projects:    projects,
		Assignments: assignments,
		Cache:       cache,
		Metrics:     metrics,
		Logger:      zap.NewNop(),
		Config:      TimelineServiceConfig{MaxRangeDays: 400},
	})
	return svc, metrics
}

func januaryViewport(t *testing.T) timeline.Viewport {
	t.Helper()
	vp, err := timeline.NewViewport(day("2024-01-01"), day("2024-01-31"), 40)
	require.NoError(t, err)
	return vp
}

func TestTimelineServiceLayoutInline(t *testing.T) {
	svc, metrics := newTimelineServiceForTest(nil)
	people, projects, assignments := planningFixture()
	cfg := svc.LayoutConfig()

	resp, err := svc.Layout(context.Background(), dto.LayoutRequest{
		People:      people.people,
		Projects:    projects.projects,
		Assignments: assignments.assignments[:3],
		Viewport:    januaryViewport(t),
	})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)

	first := resp.Rows[0]
	assert.Equal(t, 2, first.Lanes)
	assert.Equal(t, timeline.RowHeight(2, cfg), first.HeightPx)
	assert.Equal(t, "a1", first.Bars[0].Assignment.ID)
	assert.Equal(t, 0, first.Bars[0].Lane)
	assert.Equal(t, 1, first.Bars[1].Lane)
	assert.Equal(t, "Gemini", first.Bars[1].Project.Name)

	second := resp.Rows[1]
	assert.Equal(t, first.HeightPx, second.TopPx)
	assert.Equal(t, first.HeightPx+second.HeightPx, resp.TotalHeightPx)
	assert.Equal(t, 31*40.0, resp.TotalWidthPx)
	assert.Equal(t, "2024-01-01", resp.VisibleStart.String())
	assert.Equal(t, "2024-01-31", resp.VisibleEnd.String())
	assert.Equal(t, uint64(1), metrics.Snapshot().Layouts)
}

func TestTimelineServiceLayoutUnresolvedReferences(t *testing.T) {
	svc, _ := newTimelineServiceForTest(nil)
	people, projects, _ := planningFixture()
	orphan := plannedAssignment("x1", "p9", "pr1", "2024-01-02", "2024-01-03", 0.5)
	req := dto.LayoutRequest{
		People:      people.people,
		Projects:    projects.projects,
		Assignments: []models.Assignment{orphan},
		Viewport:    januaryViewport(t),
	}

	_, err := svc.Layout(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrMissingReference)

	req.SkipUnresolved = true
	resp, err := svc.Layout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1"}, resp.Dropped)
	assert.Empty(t, resp.Rows[0].Bars)
}

func TestTimelineServiceLayoutRejectsBadViewport(t *testing.T) {
	svc, _ := newTimelineServiceForTest(nil)

	_, err := svc.Layout(context.Background(), dto.LayoutRequest{Viewport: timeline.Viewport{
		WindowStart: day("2024-02-01"), WindowEnd: day("2024-01-01"), DayWidthPx: 40,
	}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Layout(context.Background(), dto.LayoutRequest{Viewport: timeline.Viewport{
		WindowStart: day("2024-01-01"), WindowEnd: day("2026-01-01"), DayWidthPx: 40,
	}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTimelineServiceLayoutForFilter(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc, _ := newTimelineServiceForTest(cache)
	query := dto.TimelineQuery{WindowStart: "2024-01-01", WindowEnd: "2024-01-31", VisibleWidthPx: 400}

	resp, hit, err := svc.LayoutForFilter(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 40.0, resp.Viewport.DayWidthPx)
	assert.Len(t, resp.Rows[1].Bars, 1)

	_, hit, err = svc.LayoutForFilter(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, hit)

	query.OverallocatedOnly = true
	only, _, err := svc.LayoutForFilter(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, only.Rows, 1)
	assert.Equal(t, "p1", only.Rows[0].Person.ID)

	_, _, err = svc.LayoutForFilter(context.Background(), dto.TimelineQuery{WindowStart: "2024-01-01"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTimelineServiceSnap(t *testing.T) {
	svc, _ := newTimelineServiceForTest(nil)
	a := plannedAssignment("a1", "p1", "pr1", "2024-01-10", "2024-01-12", 0.5)

	resp, err := svc.Snap(context.Background(), dto.SnapRequest{Assignment: a, Mode: timeline.DragMove, DeltaPx: 55, DayWidthPx: 40})
	require.NoError(t, err)
	assert.Equal(t, 40.0, resp.SnappedDeltaPx)
	assert.Equal(t, 1, resp.DeltaDays)
	assert.Equal(t, "2024-01-11", resp.Assignment.StartDay.String())
	assert.Empty(t, resp.Conflicts)

	resp, err = svc.Snap(context.Background(), dto.SnapRequest{
		Assignment: a,
		Mode:       timeline.DragResizeEnd,
		DeltaPx:    80,
		DayWidthPx: 40,
		Existing: []models.Assignment{
			a,
			plannedAssignment("a2", "p1", "pr2", "2024-01-13", "2024-01-20", 0.6),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", resp.Assignment.EndDay.String())
	require.Len(t, resp.Conflicts, 2)
	assert.Equal(t, "2024-01-13", resp.Conflicts[0].Day.String())

	_, err = svc.Snap(context.Background(), dto.SnapRequest{Assignment: a, Mode: "teleport", DayWidthPx: 40})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTimelineServiceSelect(t *testing.T) {
	svc, _ := newTimelineServiceForTest(nil)

	resp, err := svc.Select(context.Background(), dto.SelectionRequest{Viewport: januaryViewport(t), DownPx: 130, MovePx: 10})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", resp.StartDate.String())
	assert.Equal(t, "2024-01-04", resp.EndDate.String())
	assert.Equal(t, 4, resp.Days)
}

func TestTimelineServiceExpand(t *testing.T) {
	svc, _ := newTimelineServiceForTest(nil)
	vp, err := timeline.NewViewport(day("2024-03-01"), day("2024-03-31"), 40)
	require.NoError(t, err)

	resp, err := svc.Expand(context.Background(), dto.ExpandRequest{Viewport: vp.WithScroll(100), Direction: timeline.DirectionStart, Months: 1})
	require.NoError(t, err)
	assert.Equal(t, 29, resp.AddedDays)
	assert.Equal(t, "2024-02-01", resp.Viewport.WindowStart.String())
	assert.Equal(t, 1260.0, resp.Viewport.ScrollLeftPx)

	_, err = svc.Expand(context.Background(), dto.ExpandRequest{Viewport: vp, Direction: timeline.DirectionEnd, Months: 24})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Expand(context.Background(), dto.ExpandRequest{Viewport: vp, Direction: "sideways", Months: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
