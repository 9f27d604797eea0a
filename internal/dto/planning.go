package dto

import (
	"time"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// CheckOverallocationRequest asks whether a candidate assignment would push its
// person over the tolerance. Allocation is a fraction of one FTE;
// AllocationPercent is accepted instead for clients that work in whole
// percentages. When Existing is omitted the person's stored assignments are used;
// an explicit empty list checks against no commitments.
type CheckOverallocationRequest struct {
	PersonID            string              `json:"person_id" validate:"required"`
	StartDate           calendarday.Day     `json:"start_date"`
	EndDate             calendarday.Day     `json:"end_date"`
	Allocation          *float64            `json:"allocation,omitempty"`
	AllocationPercent   *float64            `json:"allocation_percent,omitempty"`
	ExcludeAssignmentID string              `json:"exclude_assignment_id,omitempty"`
	Existing            []models.Assignment `json:"existing,omitempty"`
}

// OverallocationResponse lists the offending days of a check.
type OverallocationResponse struct {
	PersonID      string                 `json:"person_id"`
	StartDate     calendarday.Day        `json:"start_date"`
	EndDate       calendarday.Day        `json:"end_date"`
	Allocation    float64                `json:"allocation"`
	Tolerance     float64                `json:"tolerance"`
	Overallocated bool                   `json:"overallocated"`
	Days          []allocation.DayReport `json:"days"`
}

// DailyTotalsQuery bounds the per-day totals of one person.
type DailyTotalsQuery struct {
	Start string `form:"start" validate:"required,calendarday"`
	End   string `form:"end" validate:"required,calendarday"`
}

// DailyTotalsResponse is one person's load over a range.
type DailyTotalsResponse struct {
	PersonID          string                `json:"person_id"`
	StartDate         calendarday.Day       `json:"start_date"`
	EndDate           calendarday.Day       `json:"end_date"`
	OverallocatedDays int                   `json:"overallocated_days"`
	PeakAllocation    float64               `json:"peak_allocation"`
	Days              []allocation.DayTotal `json:"days"`
}

// BreakdownResponse explains one person's total on one day.
type BreakdownResponse struct {
	PersonID string `json:"person_id"`
	allocation.DayBreakdown
}

// PlanningFilterQuery is the query-string form of models.PlanningFilter.
type PlanningFilterQuery struct {
	Profiles          []string `form:"profile"`
	Statuses          []string `form:"status" validate:"omitempty,dive,oneof=active inactive"`
	ContractTypes     []string `form:"contract_type"`
	Start             string   `form:"start" validate:"omitempty,calendarday"`
	End               string   `form:"end" validate:"omitempty,calendarday"`
	OverallocatedOnly bool     `form:"overallocated_only"`
}

// Filter converts the query into the closed filter type. Call it only after
// validation; unparsable dates are ignored.
func (q PlanningFilterQuery) Filter() models.PlanningFilter {
	filter := models.DefaultPlanningFilter()
	filter.Profiles = q.Profiles
	filter.ContractTypes = q.ContractTypes
	filter.OverallocatedOnly = q.OverallocatedOnly
	if len(q.Statuses) > 0 {
		filter.Statuses = make([]models.PersonStatus, len(q.Statuses))
		for i, s := range q.Statuses {
			filter.Statuses[i] = models.PersonStatus(s)
		}
	}
	if d, err := calendarday.Parse(q.Start); err == nil {
		filter.Start = &d
	}
	if d, err := calendarday.Parse(q.End); err == nil {
		filter.End = &d
	}
	return filter
}

// OverallocationReportQuery selects who appears in the report.
type OverallocationReportQuery struct {
	PlanningFilterQuery
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=500"`
}

// ExportQuery picks the rendered format of the report.
type ExportQuery struct {
	OverallocationReportQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// PersonOverallocation is one affected person in the report.
type PersonOverallocation struct {
	Person         models.Person          `json:"person"`
	PeakAllocation float64                `json:"peak_allocation"`
	Days           []allocation.DayReport `json:"days"`
}

// OverallocationReport lists everyone over the tolerance in a range.
type OverallocationReport struct {
	StartDate   calendarday.Day        `json:"start_date"`
	EndDate     calendarday.Day        `json:"end_date"`
	Tolerance   float64                `json:"tolerance"`
	PeopleTotal int                    `json:"people_total"`
	People      []PersonOverallocation `json:"people"`
	GeneratedAt time.Time              `json:"generated_at"`
}
