package models

import (
	"net/url"
	"strings"

	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// PlanningFilter is the one filter shape shared by the timeline, the
// overallocation report and the CLI. Empty slices mean "any".
type PlanningFilter struct {
	Profiles          []string         `json:"profiles,omitempty"`
	Statuses          []PersonStatus   `json:"statuses,omitempty"`
	ContractTypes     []string         `json:"contract_types,omitempty"`
	Start             *calendarday.Day `json:"start,omitempty"`
	End               *calendarday.Day `json:"end,omitempty"`
	OverallocatedOnly bool             `json:"overallocated_only,omitempty"`
}

// DefaultPlanningFilter selects active people over an unbounded range.
func DefaultPlanningFilter() PlanningFilter {
	return PlanningFilter{Statuses: []PersonStatus{PersonStatusActive}}
}

// Matches applies the person-level dimensions of the filter.
func (f PlanningFilter) Matches(p Person) bool {
	if len(f.Profiles) > 0 && !containsFold(f.Profiles, p.Profile) {
		return false
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		if !containsFold(statuses, string(p.Status)) {
			return false
		}
	}
	if len(f.ContractTypes) > 0 && !containsFold(f.ContractTypes, p.ContractType) {
		return false
	}
	return true
}

// Range resolves the date dimension against a fallback window.
func (f PlanningFilter) Range(fallback calendarday.Range) (calendarday.Range, error) {
	start, end := fallback.Start(), fallback.End()
	if f.Start != nil {
		start = *f.Start
	}
	if f.End != nil {
		end = *f.End
	}
	return calendarday.DaysBetween(start, end)
}

// CacheKey renders the filter deterministically for cache keys. Values are
// lowercased and query-escaped so separators inside a value cannot collide.
func (f PlanningFilter) CacheKey() string {
	statuses := make([]string, len(f.Statuses))
	for i, s := range f.Statuses {
		statuses[i] = string(s)
	}
	parts := []string{
		joinEscaped(f.Profiles),
		joinEscaped(statuses),
		joinEscaped(f.ContractTypes),
		optionalDay(f.Start),
		optionalDay(f.End),
	}
	if f.OverallocatedOnly {
		parts = append(parts, "over")
	}
	return strings.Join(parts, "|")
}

func joinEscaped(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(strings.ToLower(v))
	}
	return strings.Join(escaped, ",")
}

func optionalDay(d *calendarday.Day) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
