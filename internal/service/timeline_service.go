package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

// Layout sources, used as a metrics label.
const (
	LayoutSourceInline     = "inline"
	LayoutSourceRepository = "repository"
)

type projectReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Project, error)
}

// TimelineServiceConfig carries the grid constants and request bounds.
type TimelineServiceConfig struct {
	Layout          timeline.LayoutConfig
	DefaultDayWidth float64
	MaxRangeDays    int
	CacheTTL        time.Duration
}

// TimelineServiceParams groups constructor dependencies.
type TimelineServiceParams struct {
	People      personReader
	Projects    projectReader
	Assignments assignmentReader
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      TimelineServiceConfig
}

// TimelineService turns assignments into positioned bars and serves the
// stateless interaction helpers of the grid.
type TimelineService struct {
	people      personReader
	projects    projectReader
	assignments assignmentReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         TimelineServiceConfig
}

// NewTimelineService constructs a TimelineService.
func NewTimelineService(params TimelineServiceParams) *TimelineService {
	cfg := params.Config
	cfg.Layout = cfg.Layout.WithDefaults()
	if cfg.DefaultDayWidth <= 0 {
		cfg.DefaultDayWidth = 40
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 731
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		people:      params.People,
		projects:    params.Projects,
		assignments: params.Assignments,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   ensureValidator(params.Validator),
		logger:      logger,
		cfg:         cfg,
	}
}

// LayoutConfig exposes the effective grid constants.
func (s *TimelineService) LayoutConfig() timeline.LayoutConfig {
	return s.cfg.Layout
}

// Layout places caller-supplied people, projects and assignments without
// touching storage.
func (s *TimelineService) Layout(_ context.Context, req dto.LayoutRequest) (*dto.LayoutResponse, error) {
	started := time.Now()
	if err := s.checkViewport(req.Viewport); err != nil {
		return nil, err
	}

	assignments := req.Assignments
	var dropped []string
	if req.SkipUnresolved {
		assignments, dropped = timeline.FilterResolvable(req.People, req.Projects, assignments)
	}

	rows, err := timeline.Layout(req.People, req.Projects, assignments, req.Viewport, s.cfg.Layout, timeline.Interaction{DraggingID: req.DraggingID})
	if err != nil {
		return nil, mapEngineError(err)
	}
	resp := s.buildResponse(req.Viewport, rows, dropped)
	s.metrics.ObserveLayout(LayoutSourceInline, len(rows), hiddenBars(rows), time.Since(started))
	return resp, nil
}

// LayoutForFilter loads the people matching the query and their assignments
// overlapping the window, then lays them out. The boolean reports a cache hit.
func (s *TimelineService) LayoutForFilter(ctx context.Context, query dto.TimelineQuery) (*dto.LayoutResponse, bool, error) {
	started := time.Now()
	if err := s.validator.Struct(query); err != nil {
		return nil, false, validationError(err)
	}
	vp, err := s.viewportFromQuery(query)
	if err != nil {
		return nil, false, err
	}
	filter := query.Filter()

	cacheKey := fmt.Sprintf("timeline:%s:%s:%s:%g:%g:%g:%g:%s",
		filter.CacheKey(), vp.WindowStart, vp.WindowEnd, vp.DayWidthPx,
		vp.ScrollLeftPx, vp.VisibleWidthPx, vp.SidebarWidthPx, query.DraggingID)
	var cached dto.LayoutResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	people, err := s.people.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list people")
	}
	var assignments []models.Assignment
	if len(people) > 0 {
		queryStart := time.Now()
		assignments, err = s.assignments.ListByPeople(ctx, personIDs(people), vp.Window())
		s.metrics.ObserveDBQuery("timeline_assignments", time.Since(queryStart))
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
		}
	}
	if filter.OverallocatedOnly {
		scan, err := filter.Range(vp.Window())
		if err != nil {
			return nil, false, mapEngineError(err)
		}
		people, assignments = keepOverallocated(people, assignments, scan)
	}
	projects, err := s.projects.ListByIDs(ctx, projectIDs(assignments))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load projects")
	}

	assignments, dropped := timeline.FilterResolvable(people, projects, assignments)
	if len(dropped) > 0 {
		s.logger.Warn("skipping assignments with unresolved references", zap.Strings("assignment_ids", dropped))
	}

	rows, err := timeline.Layout(people, projects, assignments, vp, s.cfg.Layout, timeline.Interaction{DraggingID: query.DraggingID})
	if err != nil {
		return nil, false, mapEngineError(err)
	}
	resp := s.buildResponse(vp, rows, dropped)
	s.metrics.ObserveLayout(LayoutSourceRepository, len(rows), hiddenBars(rows), time.Since(started))
	s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Snap previews a drag or resize snapped to whole days. When existing
// assignments are supplied, the snapped result is checked against them.
func (s *TimelineService) Snap(_ context.Context, req dto.SnapRequest) (*dto.SnapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := allocation.Validate(req.Assignment); err != nil {
		return nil, mapEngineError(err)
	}

	updated := timeline.Apply(req.Assignment, req.Mode, req.DeltaPx, req.DayWidthPx)
	resp := &dto.SnapResponse{
		Assignment:     updated,
		SnappedDeltaPx: timeline.Snap(req.DeltaPx, req.DayWidthPx),
		DeltaDays:      timeline.SnapDays(req.DeltaPx, req.DayWidthPx),
	}
	if len(req.Existing) == 0 {
		return resp, nil
	}

	conflicts, err := allocation.CheckOverallocation(req.Existing, allocation.Candidate{
		PersonID:   updated.PersonID,
		StartDay:   updated.StartDay,
		EndDay:     updated.EndDay,
		Allocation: updated.Allocation,
	}, updated.ID)
	if err != nil {
		return nil, mapEngineError(err)
	}
	resp.Conflicts = conflicts
	return resp, nil
}

// Select converts a pointer drag over empty cells into an inclusive day range.
func (s *TimelineService) Select(_ context.Context, req dto.SelectionRequest) (*dto.SelectionResponse, error) {
	if err := s.checkViewport(req.Viewport); err != nil {
		return nil, err
	}
	vp := req.Viewport
	start, end := timeline.Select(vp.WindowStart, vp.DayIndexAt(req.DownPx), vp.DayIndexAt(req.MovePx))
	return &dto.SelectionResponse{
		StartDate: start,
		EndDate:   end,
		Days:      calendarday.Diff(start, end) + 1,
	}, nil
}

// Expand grows the window at one edge and re-anchors the scroll offset once,
// so the day under the viewport's left edge stays put.
func (s *TimelineService) Expand(_ context.Context, req dto.ExpandRequest) (*dto.ExpandResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkViewport(req.Viewport); err != nil {
		return nil, err
	}
	next, added := req.Viewport.Expand(req.Direction, req.Months)
	if next.Days() > s.cfg.MaxRangeDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window would exceed %d days", s.cfg.MaxRangeDays))
	}
	return &dto.ExpandResponse{Viewport: next.Reanchor(added), AddedDays: added}, nil
}

func (s *TimelineService) checkViewport(vp timeline.Viewport) error {
	if err := vp.Validate(); err != nil {
		return mapEngineError(err)
	}
	if vp.Days() > s.cfg.MaxRangeDays {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window exceeds %d days", s.cfg.MaxRangeDays))
	}
	return nil
}

func (s *TimelineService) viewportFromQuery(query dto.TimelineQuery) (timeline.Viewport, error) {
	start, _ := calendarday.Parse(query.WindowStart)
	end, _ := calendarday.Parse(query.WindowEnd)
	dayWidth := query.DayWidthPx
	if dayWidth <= 0 {
		dayWidth = s.cfg.DefaultDayWidth
	}
	vp, err := timeline.NewViewport(start, end, dayWidth)
	if err != nil {
		return timeline.Viewport{}, mapEngineError(err)
	}
	vp = vp.WithScroll(query.ScrollLeftPx).WithVisibleWidth(query.VisibleWidthPx)
	vp.SidebarWidthPx = query.SidebarWidthPx
	if err := s.checkViewport(vp); err != nil {
		return timeline.Viewport{}, err
	}
	return vp, nil
}

func (s *TimelineService) buildResponse(vp timeline.Viewport, rows []timeline.Row, dropped []string) *dto.LayoutResponse {
	visible := vp.VisibleRange(s.cfg.Layout.VisibleMarginPx)
	height := 0.0
	for _, row := range rows {
		height += row.HeightPx
	}
	return &dto.LayoutResponse{
		Viewport:      vp,
		VisibleStart:  visible.Start(),
		VisibleEnd:    visible.End(),
		TotalWidthPx:  vp.TotalWidthPx(),
		TotalHeightPx: height,
		Rows:          rows,
		Dropped:       dropped,
	}
}

func keepOverallocated(people []models.Person, assignments []models.Assignment, scan calendarday.Range) ([]models.Person, []models.Assignment) {
	keptPeople := make([]models.Person, 0, len(people))
	keep := make(map[string]struct{})
	for _, p := range people {
		if len(allocation.ScanOverallocation(allocation.ForPerson(assignments, p.ID), scan)) == 0 {
			continue
		}
		keptPeople = append(keptPeople, p)
		keep[p.ID] = struct{}{}
	}
	keptAssignments := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := keep[a.PersonID]; ok {
			keptAssignments = append(keptAssignments, a)
		}
	}
	return keptPeople, keptAssignments
}

func hiddenBars(rows []timeline.Row) int {
	total := 0
	for _, row := range rows {
		total += row.Overflow.Count
	}
	return total
}

func personIDs(people []models.Person) []string {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	return ids
}

func projectIDs(assignments []models.Assignment) []string {
	seen := make(map[string]struct{}, len(assignments))
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.ProjectID]; ok {
			continue
		}
		seen[a.ProjectID] = struct{}{}
		ids = append(ids, a.ProjectID)
	}
	return ids
}
