package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// Tolerance is the multiplier of one FTE a day may reach before it counts as
// overallocated. The comparison is strict: exactly 1.05 is not flagged.
const Tolerance = 1.05

var tolerance = decimal.RequireFromString("1.05")

// Candidate is a new or edited assignment under validation.
type Candidate struct {
	PersonID   string          `json:"person_id"`
	StartDay   calendarday.Day `json:"start_date"`
	EndDay     calendarday.Day `json:"end_date"`
	Allocation float64         `json:"allocation"`
}

// DayReport is one day whose projected total breaches the tolerance.
type DayReport struct {
	Day             calendarday.Day `json:"day"`
	TotalAllocation float64         `json:"total_allocation"`
}

// IsOverallocated reports whether total exceeds the tolerance.
func IsOverallocated(total float64) bool {
	return exceedsTolerance(decimal.NewFromFloat(total))
}

func exceedsTolerance(total decimal.Decimal) bool {
	return total.GreaterThan(tolerance)
}

// CheckOverallocation projects candidate onto the existing load of its person
// and returns every day whose combined allocation exceeds the tolerance.
// excludeID removes the assignment being edited from the existing load.
// An empty result means the candidate fits; overallocation is never an error.
func CheckOverallocation(existing []models.Assignment, candidate Candidate, excludeID string) ([]DayReport, error) {
	if !validAllocation(candidate.Allocation) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAllocation, candidate.Allocation)
	}
	span, err := calendarday.DaysBetween(candidate.StartDay, candidate.EndDay)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}

	owned := ForPerson(existing, candidate.PersonID)
	if err := validateAll(owned); err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(candidate.Allocation)
	reports := make([]DayReport, 0)
	for day := range span.All() {
		projected := totalDecimal(owned, day, excludeID).Add(amount)
		if exceedsTolerance(projected) {
			reports = append(reports, DayReport{Day: day, TotalAllocation: projected.InexactFloat64()})
		}
	}
	return reports, nil
}

// ScanOverallocation reports the days of rng on which the existing load of a
// single person already exceeds the tolerance.
func ScanOverallocation(assignments []models.Assignment, rng calendarday.Range) []DayReport {
	reports := make([]DayReport, 0)
	for _, total := range DailyTotals(assignments, rng, "") {
		if total.Overallocated {
			reports = append(reports, DayReport{Day: total.Day, TotalAllocation: total.TotalAllocation})
		}
	}
	return reports
}

// Validate checks the range and allocation invariants of one assignment.
func Validate(a models.Assignment) error {
	if a.StartDay.After(a.EndDay) {
		return fmt.Errorf("assignment %s: %w: %s is after %s", a.ID, ErrInvalidRange, a.StartDay, a.EndDay)
	}
	if !validAllocation(a.Allocation) {
		return fmt.Errorf("assignment %s: %w: %v", a.ID, ErrInvalidAllocation, a.Allocation)
	}
	return nil
}

func validateAll(assignments []models.Assignment) error {
	for _, a := range assignments {
		if err := Validate(a); err != nil {
			return err
		}
	}
	return nil
}
