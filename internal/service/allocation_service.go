package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

const (
	defaultReportHorizonDays = 90
	defaultReportPageSize    = 50
)

type personReader interface {
	List(ctx context.Context, filter models.PlanningFilter) ([]models.Person, error)
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

type assignmentReader interface {
	ListByPerson(ctx context.Context, personID string) ([]models.Assignment, error)
	ListByPeople(ctx context.Context, personIDs []string, window calendarday.Range) ([]models.Assignment, error)
}

// AllocationServiceConfig bounds the ranges the service will aggregate.
type AllocationServiceConfig struct {
	MaxRangeDays      int
	ReportHorizonDays int
	CacheTTL          time.Duration
}

// AllocationServiceParams groups constructor dependencies.
type AllocationServiceParams struct {
	People      personReader
	Assignments assignmentReader
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      AllocationServiceConfig
}

// AllocationService answers daily load and overallocation questions against
// the read-only assignment snapshot.
type AllocationService struct {
	people      personReader
	assignments assignmentReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
	cfg         AllocationServiceConfig
}

// NewAllocationService constructs an AllocationService.
func NewAllocationService(params AllocationServiceParams) *AllocationService {
	cfg := params.Config
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 731
	}
	if cfg.ReportHorizonDays <= 0 {
		cfg.ReportHorizonDays = defaultReportHorizonDays
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		people:      params.People,
		assignments: params.Assignments,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   ensureValidator(params.Validator),
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Check projects a candidate assignment onto its person's load. The response
// lists every day above the tolerance; an empty list means it fits.
func (s *AllocationService) Check(ctx context.Context, req dto.CheckOverallocationRequest) (*dto.OverallocationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date and end_date are required")
	}
	amount, err := resolveAllocation(req.Allocation, req.AllocationPercent)
	if err == nil {
		err = mapEngineError(allocation.Validate(models.Assignment{
			ID:         "candidate",
			PersonID:   req.PersonID,
			StartDay:   req.StartDate,
			EndDay:     req.EndDate,
			Allocation: amount,
		}))
	}
	if err != nil {
		s.metrics.RecordCheck(CheckResultRejected, 0)
		return nil, err
	}
	if _, err := s.boundedRange(req.StartDate, req.EndDate); err != nil {
		s.metrics.RecordCheck(CheckResultRejected, 0)
		return nil, err
	}

	// An explicit empty list is an inline check for someone with no
	// commitments; only an omitted list falls back to the repository.
	existing := req.Existing
	if existing == nil {
		if _, err := s.findPerson(ctx, req.PersonID); err != nil {
			return nil, err
		}
		existing, err = s.assignments.ListByPerson(ctx, req.PersonID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
		}
	}

	candidate := allocation.Candidate{
		PersonID:   req.PersonID,
		StartDay:   req.StartDate,
		EndDay:     req.EndDate,
		Allocation: amount,
	}
	days, err := allocation.CheckOverallocation(existing, candidate, req.ExcludeAssignmentID)
	if err != nil {
		s.metrics.RecordCheck(CheckResultRejected, 0)
		return nil, mapEngineError(err)
	}

	result := CheckResultFits
	if len(days) > 0 {
		result = CheckResultOverallocated
		s.logger.Debug("candidate overallocates person",
			zap.String("person_id", req.PersonID),
			zap.Int("days", len(days)),
		)
	}
	s.metrics.RecordCheck(result, len(days))

	return &dto.OverallocationResponse{
		PersonID:      req.PersonID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Allocation:    amount,
		Tolerance:     allocation.Tolerance,
		Overallocated: len(days) > 0,
		Days:          days,
	}, nil
}

// DailyTotals returns one person's summed allocation for every day of a range.
func (s *AllocationService) DailyTotals(ctx context.Context, personID string, query dto.DailyTotalsQuery) (*dto.DailyTotalsResponse, error) {
	if personID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person id is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err)
	}
	start, _ := calendarday.Parse(query.Start)
	end, _ := calendarday.Parse(query.End)
	rng, err := s.boundedRange(start, end)
	if err != nil {
		return nil, err
	}

	if _, err := s.findPerson(ctx, personID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByPerson(ctx, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	totals := allocation.DailyTotals(assignments, rng, "")
	resp := &dto.DailyTotalsResponse{
		PersonID:  personID,
		StartDate: rng.Start(),
		EndDate:   rng.End(),
		Days:      totals,
	}
	for _, total := range totals {
		if total.Overallocated {
			resp.OverallocatedDays++
		}
		if total.TotalAllocation > resp.PeakAllocation {
			resp.PeakAllocation = total.TotalAllocation
		}
	}
	return resp, nil
}

// Breakdown explains one person's total on one day.
func (s *AllocationService) Breakdown(ctx context.Context, personID, rawDay string) (*dto.BreakdownResponse, error) {
	if personID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person id is required")
	}
	day, err := calendarday.Parse(rawDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "day must be YYYY-MM-DD")
	}
	if _, err := s.findPerson(ctx, personID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByPerson(ctx, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	return &dto.BreakdownResponse{
		PersonID:     personID,
		DayBreakdown: allocation.Breakdown(assignments, day, ""),
	}, nil
}

// OverallocationReport lists the people matching the filter who are over the
// tolerance on at least one day of the range. Without explicit dates the range
// runs from today over the configured horizon. The boolean reports a cache hit.
func (s *AllocationService) OverallocationReport(ctx context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, validationError(err)
	}
	filter := query.Filter()
	today := calendarday.Today(s.now)
	fallback := calendarday.MustRange(today, calendarday.AddDays(today, s.cfg.ReportHorizonDays-1))
	rng, err := filter.Range(fallback)
	if err != nil {
		return nil, false, mapEngineError(err)
	}
	if rng.Len() > s.cfg.MaxRangeDays {
		return nil, false, s.rangeTooLong()
	}

	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultReportPageSize
	}

	cacheKey := fmt.Sprintf("report:overallocation:%s:%s:%s:%d:%d", filter.CacheKey(), rng.Start(), rng.End(), page, size)
	var cached dto.OverallocationReport
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	affected, err := s.scanPeople(ctx, filter, rng)
	if err != nil {
		return nil, false, err
	}

	report := &dto.OverallocationReport{
		StartDate:   rng.Start(),
		EndDate:     rng.End(),
		Tolerance:   allocation.Tolerance,
		PeopleTotal: len(affected),
		People:      paginate(affected, page, size),
		GeneratedAt: s.now().UTC(),
	}
	s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL)
	return report, false, nil
}

func (s *AllocationService) scanPeople(ctx context.Context, filter models.PlanningFilter, rng calendarday.Range) ([]dto.PersonOverallocation, error) {
	people, err := s.people.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list people")
	}
	if len(people) == 0 {
		return []dto.PersonOverallocation{}, nil
	}
	start := time.Now()
	assignments, err := s.assignments.ListByPeople(ctx, personIDs(people), rng)
	s.metrics.ObserveDBQuery("report_assignments", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	affected := make([]dto.PersonOverallocation, 0)
	for _, person := range people {
		days := allocation.ScanOverallocation(allocation.ForPerson(assignments, person.ID), rng)
		if len(days) == 0 {
			continue
		}
		entry := dto.PersonOverallocation{Person: person, Days: days}
		for _, d := range days {
			if d.TotalAllocation > entry.PeakAllocation {
				entry.PeakAllocation = d.TotalAllocation
			}
		}
		affected = append(affected, entry)
	}
	return affected, nil
}

func (s *AllocationService) findPerson(ctx context.Context, id string) (*models.Person, error) {
	person, err := s.people.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
	}
	return person, nil
}

func (s *AllocationService) boundedRange(start, end calendarday.Day) (calendarday.Range, error) {
	rng, err := calendarday.DaysBetween(start, end)
	if err != nil {
		return calendarday.Range{}, mapEngineError(err)
	}
	if rng.Len() > s.cfg.MaxRangeDays {
		return calendarday.Range{}, s.rangeTooLong()
	}
	return rng, nil
}

func (s *AllocationService) rangeTooLong() error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range exceeds %d days", s.cfg.MaxRangeDays))
}

// resolveAllocation converts the request's allocation to a fraction. The
// percent form is converted exactly once, here.
func resolveAllocation(fraction, percent *float64) (float64, error) {
	switch {
	case fraction != nil:
		return *fraction, nil
	case percent != nil:
		return allocation.FromPercent(*percent), nil
	default:
		return 0, appErrors.Clone(appErrors.ErrInvalidAllocation, "allocation or allocation_percent is required")
	}
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
